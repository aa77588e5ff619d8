package validator

import (
	"errors"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type searchParams struct {
	Query string `json:"q" validate:"max=10"`
	Kind  string `json:"kind" validate:"omitempty,oneof=product category"`
	Limit int    `json:"limit" validate:"gte=0,lte=100"`
}

type tier struct {
	Price int64 `json:"price" validate:"gte=0"`
}

type document struct {
	ID    string   `json:"id" validate:"required,docid"`
	Tags  []string `json:"tags" validate:"max=2"`
	Tiers []tier   `json:"tiers" validate:"dive"`
}

func TestValidate_Valid(t *testing.T) {
	assert.NoError(t, Validate(searchParams{Query: "silk", Kind: "product", Limit: 10}))
	assert.NoError(t, Validate(searchParams{}))
}

func TestValidate_FieldMessages(t *testing.T) {
	err := Validate(searchParams{Query: strings.Repeat("a", 11), Kind: "banner", Limit: 101})
	require.Error(t, err)

	var valErr *ValidationError
	require.True(t, errors.As(err, &valErr))

	fields := valErr.Fields()
	assert.Equal(t, "must be at most 10", fields["q"])
	assert.Equal(t, "must be one of: product category", fields["kind"])
	assert.Equal(t, "must be less than or equal to 100", fields["limit"])
	assert.Contains(t, err.Error(), "field 'kind'")
}

func TestValidate_NestedPaths(t *testing.T) {
	err := Validate(document{
		ID:    "p1",
		Tags:  []string{"a", "b", "c"},
		Tiers: []tier{{Price: 10}, {Price: -1}},
	})

	var valErr *ValidationError
	require.True(t, errors.As(err, &valErr))
	assert.Equal(t, map[string]string{
		"tags":           "must have at most 2 entries",
		"tiers[1].price": "must be greater than or equal to 0",
	}, valErr.Fields())
}

func TestValidate_DocumentID(t *testing.T) {
	tests := []struct {
		id    string
		valid bool
	}{
		{"p1", true},
		{"0b9f6c1e-1f6a-4a55-9d2e-3c3f1b7f8a10", true},
		{"", false},
		{"a b", false},
		{"a/b", false},
		{"tab\tid", false},
	}

	for _, tt := range tests {
		err := Validate(document{ID: tt.id})
		if tt.valid {
			assert.NoError(t, err, tt.id)
		} else {
			assert.Error(t, err, tt.id)
		}
	}
}

func TestDecodeAndValidate(t *testing.T) {
	r := httptest.NewRequest("POST", "/", strings.NewReader(`{"q":"saree","limit":5}`))
	var p searchParams
	require.NoError(t, DecodeAndValidate(r, &p))
	assert.Equal(t, "saree", p.Query)

	bad := httptest.NewRequest("POST", "/", strings.NewReader(`{`))
	err := DecodeAndValidate(bad, &p)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode request body")

	trailing := httptest.NewRequest("POST", "/", strings.NewReader(`{"q":"a"} {"q":"b"}`))
	err = DecodeAndValidate(trailing, &p)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected data")
}
