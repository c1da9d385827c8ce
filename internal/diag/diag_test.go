package diag_test

import (
	"bytes"
	"fmt"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reoring/wirejson/internal/diag"
)

func TestDiagnostics_Err(t *testing.T) {
	var d diag.Diagnostics
	d.AddWarning(diag.CodeAdapterArity, "takes two", "adapter A (Color)", "")
	assert.NoError(t, d.Err(), "warnings never fail")
	assert.False(t, d.HasErrors())

	d.AddError(diag.CodeDuplicateWireName, `wire name "x" is used twice`, "Pet", "B")
	err := d.Err()
	require.Error(t, err)
	se, ok := diag.AsSchemaError(fmt.Errorf("generate: %w", err))
	require.True(t, ok)
	require.Len(t, se.Diagnostics, 1)
	assert.Equal(t, `schema error: [Pet] B: [duplicate_wire_name] wire name "x" is used twice`, err.Error())
	assert.True(t, d.HasCode(diag.CodeAdapterArity))
	assert.False(t, d.HasCode(diag.CodeUnknownAdapter))
}

func TestDiagnostics_Log(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	var d diag.Diagnostics
	d.AddWarning(diag.CodeToWireMissing, "no to-wire function", "adapter C (Color)", "")
	d.AddInfo(diag.CodeAdapterUnused, "adapter C is not referenced", "C", "")
	d.Log(logger)

	out := buf.String()
	assert.Contains(t, out, "level=WARN")
	assert.Contains(t, out, "diagnostic.code=adapter_to_wire_missing")
	assert.Contains(t, out, "level=DEBUG")
	assert.Contains(t, out, "diagnostic.code=adapter_unused")
}

func TestSeverity_String(t *testing.T) {
	assert.Equal(t, "info", diag.SeverityInfo.String())
	assert.Equal(t, "warning", diag.SeverityWarning.String())
	assert.Equal(t, "error", diag.SeverityError.String())
}
