package validation

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/Olprog59/go-crudstarter/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSchema() *Schema {
	return NewSchema("pizzas",
		FieldRule{Field: "name", Type: domain.KindString, Required: true, Rules: []Rule{MinLength(2), MaxLength(10)}},
		FieldRule{Field: "description", Type: domain.KindString, Nullable: true, Rules: []Rule{MaxLength(20)}},
		FieldRule{Field: "price", Type: domain.KindNumber, Required: true, Rules: []Rule{Range(0, 1000)}},
		FieldRule{Field: "quantity", Type: domain.KindInteger, Rules: []Rule{Range(1, 100)}},
		FieldRule{Field: "available", Type: domain.KindBoolean},
		FieldRule{Field: "size", Type: domain.KindString, Rules: []Rule{OneOf("small", "large")}},
		FieldRule{Field: "contact", Type: domain.KindString, Rules: []Rule{Email()}},
	)
}

// decode mimics what the HTTP layer hands to Validate
func decode(t *testing.T, body string) map[string]any {
	t.Helper()
	dec := json.NewDecoder(strings.NewReader(body))
	dec.UseNumber()
	var raw map[string]any
	require.NoError(t, dec.Decode(&raw))
	return raw
}

func violationsOf(t *testing.T, err error) []domain.Violation {
	t.Helper()
	var verr *domain.ValidationError
	require.True(t, errors.As(err, &verr), "expected a ValidationError, got %v", err)
	return verr.Violations
}

func TestValidate_Success(t *testing.T) {
	raw := decode(t, `{"name":"Margherita","price":12.5,"quantity":3,"available":true,"size":"large","contact":"chef@example.com","description":null}`)

	input, err := Validate(raw, testSchema())
	require.NoError(t, err)

	assert.Equal(t, "Margherita", input["name"])
	assert.Equal(t, 12.5, input["price"])
	assert.Equal(t, int64(3), input["quantity"])
	assert.Equal(t, true, input["available"])
	assert.Equal(t, "large", input["size"])
	assert.Contains(t, input, "description")
	assert.Nil(t, input["description"])
}

func TestValidate_OmittedOptionalFieldsAreAbsent(t *testing.T) {
	input, err := Validate(map[string]any{"name": "Calabresa", "price": 30}, testSchema())
	require.NoError(t, err)

	assert.Len(t, input, 2)
	assert.NotContains(t, input, "description")
	assert.Equal(t, float64(30), input["price"])
}

func TestValidate_MissingRequiredField(t *testing.T) {
	_, err := Validate(map[string]any{"price": 10}, testSchema())

	v := violationsOf(t, err)
	require.Len(t, v, 1)
	assert.Equal(t, "name", v[0].Field)
	assert.Equal(t, CodeMissing, v[0].Rule)
}

func TestValidate_UnknownFieldRejected(t *testing.T) {
	_, err := Validate(map[string]any{"name": "Salgada", "price": 1, "color": "red"}, testSchema())

	v := violationsOf(t, err)
	require.Len(t, v, 1)
	assert.Equal(t, "color", v[0].Field)
	assert.Equal(t, CodeUnknownField, v[0].Rule)
}

func TestValidate_ReservedFieldsRejectedAsUnknown(t *testing.T) {
	_, err := Validate(map[string]any{"name": "Salgada", "price": 1, "id": 4, "created_at": "x"}, testSchema())

	v := violationsOf(t, err)
	require.Len(t, v, 2)
	assert.Equal(t, "created_at", v[0].Field)
	assert.Equal(t, "id", v[1].Field)
}

func TestValidate_ViolationOrder(t *testing.T) {
	raw := map[string]any{
		"zeta":     1,
		"alpha":    2,
		"quantity": 0,
		"name":     "x",
	}

	_, err := Validate(raw, testSchema())
	v := violationsOf(t, err)

	got := make([]string, len(v))
	for i, viol := range v {
		got[i] = viol.Field + ":" + viol.Rule
	}
	assert.Equal(t, []string{
		"name:too_short",
		"price:missing",
		"quantity:out_of_range",
		"alpha:unknown_field",
		"zeta:unknown_field",
	}, got)
}

func TestValidate_Types(t *testing.T) {
	tests := []struct {
		name  string
		field string
		value any
		code  string
	}{
		{"String given number", "name", json.Number("12"), CodeWrongType},
		{"Number given string", "price", "12", CodeWrongType},
		{"Integer given fraction", "quantity", json.Number("2.5"), CodeWrongType},
		{"Boolean given string", "available", "true", CodeWrongType},
		{"Null on non-nullable", "available", nil, CodeNull},
		{"Enum mismatch", "size", "medium", CodeNotAllowed},
		{"Bad email", "contact", "not-an-email", CodeInvalidFormat},
		{"Too long", "name", "abcdefghijk", CodeTooLong},
		{"Negative price", "price", json.Number("-1"), CodeOutOfRange},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := map[string]any{"name": "Napoli", "price": json.Number("10")}
			raw[tt.field] = tt.value

			_, err := Validate(raw, testSchema())
			v := violationsOf(t, err)
			require.Len(t, v, 1)
			assert.Equal(t, tt.field, v[0].Field)
			assert.Equal(t, tt.code, v[0].Rule)
		})
	}
}

func TestValidate_IntegerAcceptsIntegralForms(t *testing.T) {
	for _, value := range []any{json.Number("7"), json.Number("7.0"), 7, int64(7), 7.0} {
		input, err := Validate(map[string]any{"name": "Napoli", "price": 1, "quantity": value}, testSchema())
		require.NoError(t, err, "value %#v", value)
		assert.Equal(t, int64(7), input["quantity"])
	}
}

func TestValidate_MultibyteLength(t *testing.T) {
	// two runes, four bytes
	input, err := Validate(map[string]any{"name": "éé", "price": 1}, testSchema())
	require.NoError(t, err)
	assert.Equal(t, "éé", input["name"])
}

func TestValidate_NoSideEffects(t *testing.T) {
	raw := map[string]any{"name": "Napoli", "price": json.Number("9.90")}

	_, err := Validate(raw, testSchema())
	require.NoError(t, err)
	assert.Equal(t, json.Number("9.90"), raw["price"])
}

func TestPartial(t *testing.T) {
	base := testSchema()
	partial := base.Partial("pizzas:update")

	input, err := Validate(map[string]any{}, partial)
	require.NoError(t, err)
	assert.Empty(t, input)

	_, err = Validate(map[string]any{"description": nil}, partial)
	require.NoError(t, err)

	_, err = Validate(map[string]any{"name": "x"}, partial)
	v := violationsOf(t, err)
	assert.Equal(t, CodeTooShort, v[0].Rule)

	_, err = Validate(map[string]any{"name": nil}, partial)
	v = violationsOf(t, err)
	assert.Equal(t, CodeNull, v[0].Rule)

	name, _ := base.Field("name")
	assert.True(t, name.Required, "deriving must not mutate the base schema")
}

func TestNewSchema_Panics(t *testing.T) {
	assert.Panics(t, func() {
		NewSchema("bad", FieldRule{Field: "id", Type: domain.KindInteger})
	})
	assert.Panics(t, func() {
		NewSchema("bad",
			FieldRule{Field: "name", Type: domain.KindString},
			FieldRule{Field: "name", Type: domain.KindString},
		)
	})
	assert.Panics(t, func() {
		NewSchema("bad", FieldRule{Field: "when", Type: domain.Kind("date")})
	})
}

func TestRuleMessages(t *testing.T) {
	assert.Equal(t, "gte=0,lte=1000", Range(0, 1000).Tag)
	assert.Equal(t, "must be between 0.5 and 2", Range(0.5, 2).Message)
	assert.Equal(t, "gte=1", Min(1).Tag)
	assert.Equal(t, "oneof=pending delivered", OneOf("pending", "delivered").Tag)
}
