package wirejson_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	wirejson "github.com/reoring/wirejson"
)

// at returns a reader positioned on the single value in doc.
func at(t *testing.T, doc string) wirejson.Reader {
	t.Helper()
	r := wirejson.NewBytesReader([]byte(doc))
	require.NotEqual(t, wirejson.TokenNone, r.NextToken(), "%v", r.Err())
	return r
}

func TestReadInt(t *testing.T) {
	tests := []struct {
		doc     string
		mapping wirejson.Mapping
		want    *int32
		wantErr string
	}{
		{doc: `7`, mapping: wirejson.Exact, want: ptr[int32](7)},
		{doc: `null`, mapping: wirejson.Exact},
		{doc: `"7"`, mapping: wirejson.Exact, wantErr: wirejson.CodeInvalidType},
		{doc: `7.5`, mapping: wirejson.Exact, wantErr: wirejson.CodeInvalidType},
		{doc: `"7"`, mapping: wirejson.Coerced, want: ptr[int32](7)},
		{doc: `7.5`, mapping: wirejson.Coerced, want: ptr[int32](7)},
		{doc: `true`, mapping: wirejson.Coerced, want: ptr[int32](1)},
		{doc: `{}`, mapping: wirejson.Coerced},
		{doc: `4294967296`, mapping: wirejson.Coerced, wantErr: wirejson.CodeOverflow},
	}
	for _, tt := range tests {
		t.Run(tt.doc+"/"+tt.mapping.String(), func(t *testing.T) {
			got, err := wirejson.ReadInt[int32](at(t, tt.doc), tt.mapping)
			if tt.wantErr != "" {
				iss, ok := wirejson.AsIssues(err)
				require.True(t, ok, "err = %v", err)
				assert.Equal(t, tt.wantErr, iss[0].Code)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestReadInt_Unsigned(t *testing.T) {
	got, err := wirejson.ReadInt[uint8](at(t, `255`), wirejson.Exact)
	require.NoError(t, err)
	assert.Equal(t, uint8(255), *got)

	_, err = wirejson.ReadInt[uint8](at(t, `256`), wirejson.Exact)
	assert.Error(t, err)
	_, err = wirejson.ReadInt[uint32](at(t, `-1`), wirejson.Exact)
	assert.Error(t, err)
}

func TestIntValue_MismatchIsNil(t *testing.T) {
	assert.Nil(t, wirejson.IntValue[int64](at(t, `"x"`), wirejson.Exact))
	assert.Nil(t, wirejson.IntValue[int64](at(t, `null`), wirejson.Coerced))
	assert.Equal(t, ptr[int64](3), wirejson.IntValue[int64](at(t, `"3"`), wirejson.Coerced))
}

func TestFloats(t *testing.T) {
	got, err := wirejson.ReadFloat[float64](at(t, `1e3`), wirejson.Exact)
	require.NoError(t, err)
	assert.Equal(t, 1000.0, *got)

	_, err = wirejson.ReadFloat[float32](at(t, `"1.5"`), wirejson.Exact)
	assert.Error(t, err)

	assert.Equal(t, ptr[float32](1.5), wirejson.FloatValue[float32](at(t, `"1.5"`), wirejson.Coerced))
	assert.Nil(t, wirejson.FloatValue[float32](at(t, `[]`), wirejson.Coerced))
}

func TestBoolsAndStrings(t *testing.T) {
	b, err := wirejson.ReadBool(at(t, `false`), wirejson.Exact)
	require.NoError(t, err)
	assert.False(t, *b)

	_, err = wirejson.ReadBool(at(t, `1`), wirejson.Exact)
	assert.Error(t, err)
	assert.Equal(t, ptr(true), wirejson.BoolValue(at(t, `1`), wirejson.Coerced))

	assert.Equal(t, ptr("12"), wirejson.StringValue(at(t, `12`), wirejson.Coerced))
	assert.Nil(t, wirejson.StringValue(at(t, `12`), wirejson.Exact))
	assert.Nil(t, wirejson.StringValue(at(t, `null`), wirejson.Coerced))
	assert.Equal(t, ptr("é\n"), wirejson.StringValue(at(t, `"é\n"`), wirejson.Exact))
}

func ptr[T any](v T) *T { return &v }
