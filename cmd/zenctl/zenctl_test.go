package main

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestCalcInstallment(t *testing.T) {
	out, err := run(t, "calc", "installment", "--principal", "1.000,00", "--rate", "1", "--months", "12")
	require.NoError(t, err)
	assert.Contains(t, out, "Installment: R$ 88,85")
	assert.Contains(t, out, "Total:       R$ 1.066,20")
}

func TestCalcRate(t *testing.T) {
	out, err := run(t, "calc", "rate", "--value", "1000", "--total", "1000", "--installments", "10")
	require.NoError(t, err)
	assert.Contains(t, out, "Monthly: 0.0000%")

	_, err = run(t, "calc", "rate", "--value", "abc", "--total", "1000")
	assert.Error(t, err)
}

func TestCalcSchedule(t *testing.T) {
	out, err := run(t, "calc", "schedule", "--principal", "300", "--months", "3")
	require.NoError(t, err)
	assert.Contains(t, out, "100.00")
	assert.Contains(t, out, "0.00")
}

func TestTollsEstimateByDistance(t *testing.T) {
	out, err := run(t, "tolls", "estimate", "--km", "250")
	require.NoError(t, err)
	assert.Contains(t, out, "flat rate")
	assert.Contains(t, out, "Total:    R$ 18,00")
}

func TestTollsEstimateRejectsBadPoint(t *testing.T) {
	_, err := run(t, "tolls", "estimate", "--point", "-23.5", "--point", "-22.9,-43.1")
	assert.Error(t, err)

	_, err = run(t, "tolls", "estimate", "--point", "95,0", "--point", "-22.9,-43.1")
	assert.Error(t, err)
}

func TestMigrate(t *testing.T) {
	db := filepath.Join(t.TempDir(), "zen.db")
	out, err := run(t, "migrate", "--db", db)
	require.NoError(t, err)
	assert.Contains(t, out, "schema version 1")
}

func TestPlazas(t *testing.T) {
	out, err := run(t, "tolls", "plazas")
	require.NoError(t, err)
	assert.Contains(t, out, "PLAZA")
}
