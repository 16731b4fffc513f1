package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/doclog/internal/filter"
	"github.com/roach88/doclog/internal/ir"
	"github.com/roach88/doclog/internal/testutil"
)

// matchAll returns which docs of a document engine match js.
func matchAll(t *testing.T, e *Engine[ir.IRObject], js string, docs ...string) []bool {
	t.Helper()
	match, err := e.Matcher(mustParse(t, js))
	require.NoError(t, err)

	out := make([]bool, len(docs))
	for i, d := range docs {
		out[i] = match(mustDoc(t, d))
	}
	return out
}

func TestMatcher_Eq(t *testing.T) {
	e := newDocEngine(t, testutil.NewLog())

	tests := []struct {
		name   string
		filter string
		doc    string
		want   bool
	}{
		{"string equal", `{"name": {"$eq": "Ann"}}`, `{"name":"Ann"}`, true},
		{"string differs", `{"name": {"$eq": "Ann"}}`, `{"name":"ann"}`, false},
		{"int equals float", `{"age": {"$eq": 30}}`, `{"age":30.0}`, true},
		{"kind mismatch", `{"age": {"$eq": "30"}}`, `{"age":30}`, false},
		{"missing field", `{"age": {"$eq": 30}}`, `{"name":"Ann"}`, false},
		{"array structural", `{"tags": {"$eq": ["a","b"]}}`, `{"tags":["a","b"]}`, true},
		{"array order matters", `{"tags": {"$eq": ["a","b"]}}`, `{"tags":["b","a"]}`, false},
		{"object structural", `{"loc": {"$eq": {"x":1,"y":2}}}`, `{"loc":{"y":2,"x":1}}`, true},
		{"null equals null", `{"x": {"$eq": null}}`, `{"x":null}`, true},
		{"null does not equal missing", `{"x": {"$eq": null}}`, `{}`, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, []bool{tt.want}, matchAll(t, e, tt.filter, tt.doc))
		})
	}
}

func TestMatcher_FalsyOperands(t *testing.T) {
	docs := []string{`{"n":0,"s":"","b":false,"z":null}`, `{"n":1,"s":"x","b":true,"z":1}`, `{"n":-5}`}

	tests := []struct {
		filter  string
		present []bool
		truthy  []bool
	}{
		{`{"n": {"$eq": 0}}`, []bool{true, false, false}, []bool{true, true, true}},
		{`{"s": {"$eq": ""}}`, []bool{true, false, false}, []bool{true, true, true}},
		{`{"b": {"$eq": false}}`, []bool{true, false, false}, []bool{true, true, true}},
		{`{"z": {"$eq": null}}`, []bool{true, false, false}, []bool{true, true, true}},
		{`{"n": {"$gt": 0}}`, []bool{false, true, false}, []bool{true, true, true}},
		{`{"n": {"$lt": 0}}`, []bool{false, false, true}, []bool{true, true, true}},
		{`{"n": {"$eq": 1}}`, []bool{false, true, false}, []bool{false, true, false}},
		{`{"n": {"$in": []}}`, []bool{false, false, false}, []bool{false, false, false}},
		{`{"n": {"$in": [0]}}`, []bool{true, false, false}, []bool{true, false, false}},
		{`{"n": {"$eq": 0, "$lt": 5}}`, []bool{true, false, false}, []bool{true, true, true}},
		{`{"n": {"$eq": 1, "$lt": 5}}`, []bool{false, true, false}, []bool{false, true, false}},
	}

	present := newDocEngine(t, testutil.NewLog())
	truthy := newDocEngine(t, testutil.NewLog(), WithOperandMode(OperandTruthy))

	for _, tt := range tests {
		t.Run(tt.filter, func(t *testing.T) {
			assert.Equal(t, tt.present, matchAll(t, present, tt.filter, docs...), "present mode")
			assert.Equal(t, tt.truthy, matchAll(t, truthy, tt.filter, docs...), "truthy mode")
		})
	}
}

func TestMatcher_GtLt(t *testing.T) {
	e := newDocEngine(t, testutil.NewLog())

	tests := []struct {
		name   string
		filter string
		doc    string
		want   bool
	}{
		{"gt number", `{"age": {"$gt": 25}}`, `{"age":30}`, true},
		{"gt equal is false", `{"age": {"$gt": 30}}`, `{"age":30}`, false},
		{"lt float vs int", `{"age": {"$lt": 30.5}}`, `{"age":30}`, true},
		{"gt string", `{"name": {"$gt": "B"}}`, `{"name":"Cid"}`, true},
		{"lt string byte order", `{"name": {"$lt": "a"}}`, `{"name":"Z"}`, true},
		{"gt bool", `{"ok": {"$gt": false}}`, `{"ok":true}`, true},
		{"range", `{"age": {"$gt": 20, "$lt": 30}}`, `{"age":25}`, true},
		{"range miss", `{"age": {"$gt": 20, "$lt": 30}}`, `{"age":30}`, false},
		{"kind mismatch", `{"age": {"$gt": "10"}}`, `{"age":30}`, false},
		{"missing", `{"age": {"$lt": 100}}`, `{}`, false},
		{"null is not ordered", `{"age": {"$lt": 100}}`, `{"age":null}`, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, []bool{tt.want}, matchAll(t, e, tt.filter, tt.doc))
		})
	}
}

func TestMatcher_In(t *testing.T) {
	e := newDocEngine(t, testutil.NewLog())

	got := matchAll(t, e, `{"name": {"$in": ["Ann", "Cid", 7]}}`,
		`{"name":"Ann"}`, `{"name":"Bob"}`, `{"name":7.0}`, `{}`)
	assert.Equal(t, []bool{true, false, true, false}, got)
}

func TestMatcher_ConditionalIsAnd(t *testing.T) {
	e := newDocEngine(t, testutil.NewLog())

	got := matchAll(t, e, `{"name": {"$eq": "Ann"}, "age": {"$gt": 20}}`,
		`{"name":"Ann","age":30}`, `{"name":"Ann","age":10}`, `{"name":"Bob","age":30}`)
	assert.Equal(t, []bool{true, false, false}, got)
}

func TestMatcher_EmptyConditionalMatchesAll(t *testing.T) {
	e := newDocEngine(t, testutil.NewLog())
	assert.Equal(t, []bool{true, true}, matchAll(t, e, `{}`, `{}`, `{"a":1}`))
}

func TestMatcher_Multi(t *testing.T) {
	e := newDocEngine(t, testutil.NewLog())
	docs := []string{`{"a":1,"b":1}`, `{"a":1,"b":2}`, `{"a":2,"b":2}`}

	tests := []struct {
		filter string
		want   []bool
	}{
		{`{"$and": []}`, []bool{true, true, true}},
		{`{"$or": []}`, []bool{false, false, false}},
		{`{"$and": [{"a": {"$eq": 1}}, {"b": {"$eq": 2}}]}`, []bool{false, true, false}},
		{`{"$or": [{"a": {"$eq": 2}}, {"b": {"$eq": 1}}]}`, []bool{true, false, true}},
		{`{"$or": [{}]}`, []bool{true, true, true}},
	}
	for _, tt := range tests {
		t.Run(tt.filter, func(t *testing.T) {
			assert.Equal(t, tt.want, matchAll(t, e, tt.filter, docs...))
		})
	}
}

func TestMatcher_Text(t *testing.T) {
	e := newDocEngine(t, testutil.NewLog(), WithTextFields("title", "body"))

	tests := []struct {
		name  string
		query string
		doc   string
		want  bool
	}{
		{"substring does not match", "cat", `{"title":"concatenate"}`, false},
		{"case-insensitive whole word", "cat", `{"title":"The Cat sat"}`, true},
		{"second text field", "cat", `{"title":"dog","body":"a cat!"}`, true},
		{"any word matches", "bird cat", `{"body":"cat"}`, true},
		{"no word matches", "bird fish", `{"body":"cat"}`, false},
		{"non-string value ignored", "cat", `{"title":["cat"],"body":5}`, false},
		{"field not configured", "cat", `{"name":"cat"}`, false},
		{"empty query", "", `{"title":"cat"}`, false},
		{"whitespace query", "  \t ", `{"title":"cat"}`, false},
		{"metacharacters are literal", "c.t", `{"title":"cat"}`, false},
		{"metacharacters match literally", "c.t", `{"title":"a c.t b"}`, true},
		{"digits", "42", `{"title":"answer 42"}`, true},
		{"normalized unicode", "NA\u00cfVE", `{"title":"so nai\u0308ve"}`, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			match, err := e.Matcher(filter.Search(tt.query))
			require.NoError(t, err)
			assert.Equal(t, tt.want, match(mustDoc(t, tt.doc)))
		})
	}
}

func TestMatcher_TextWithoutFieldsMatchesNothing(t *testing.T) {
	e := newDocEngine(t, testutil.NewLog())

	match, err := e.Matcher(filter.Search("cat"))
	require.NoError(t, err)
	assert.False(t, match(mustDoc(t, `{"title":"cat"}`)))
}

func TestMatcher_RejectsInvalidFilters(t *testing.T) {
	e := newDocEngine(t, testutil.NewLog())

	_, err := e.Matcher(nil)
	assert.Error(t, err)

	_, err = e.Matcher(filter.Or(nil))
	assert.Error(t, err)
}

func TestMatcher_CheckOperandsReportsPath(t *testing.T) {
	e := newPersonEngine(t, testutil.NewLog())

	_, err := e.Matcher(mustParse(t, `{"$and": [{"age": {"$lt": "x"}}]}`))
	require.Error(t, err)

	var ferr *filter.Error
	require.ErrorAs(t, err, &ferr)
	assert.Equal(t, "$and[0].age.$lt", ferr.Path)
	assert.Contains(t, ferr.Message, "string operand cannot be compared with number field")
}

func TestMatcher_TruthyModeSkipsIncomparableFalsyOperand(t *testing.T) {
	e := newPersonEngine(t, testutil.NewLog(), WithOperandMode(OperandTruthy))

	match, err := e.Matcher(mustParse(t, `{"age": {"$gt": ""}}`))
	require.NoError(t, err, "falsy operand is skipped before kind checks")
	assert.True(t, match(person{Age: 3}))
}
