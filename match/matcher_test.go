package match

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"
)

func TestTypedLiteralIsTypeStrict(t *testing.T) {
	// a numeric zero template must reject the string "0"
	r := Match(ldvalue.String("0"), Number(0))
	require.False(t, r.OK)
	assert.Contains(t, r.Reason, "JSON type")

	r = Match(ldvalue.Int(0), Number(0))
	assert.True(t, r.OK)
}

func TestTypedLiteralChecksValueAfterType(t *testing.T) {
	r := Match(ldvalue.Int(1), Number(0))
	require.False(t, r.OK)
	assert.Equal(t, "value differs", r.Reason)

	assert.True(t, Match(ldvalue.String("x"), String("x")).OK)
	assert.False(t, Match(ldvalue.String("y"), String("x")).OK)
	assert.True(t, Match(ldvalue.Bool(true), Bool(true)).OK)
	assert.False(t, Match(ldvalue.Bool(false), Bool(true)).OK)
	assert.True(t, Match(ldvalue.Null(), Null()).OK)
}

func TestAnyTypedWrappersIgnoreValue(t *testing.T) {
	assert.True(t, Match(ldvalue.String("anything"), AnyString()).OK)
	assert.False(t, Match(ldvalue.Int(3), AnyString()).OK)
	assert.True(t, Match(ldvalue.Float64(3.5), AnyNumber()).OK)
	assert.True(t, Match(ldvalue.Bool(false), AnyBool()).OK)
}

func TestAnyMatchesEverything(t *testing.T) {
	for _, v := range []ldvalue.Value{
		ldvalue.Null(), ldvalue.Bool(true), ldvalue.Int(7),
		ldvalue.String("s"), ldvalue.ArrayOf(), ldvalue.ObjectBuild().Build(),
	} {
		assert.True(t, Match(v, Any()).OK, "Any() rejected %s", v.JSONString())
	}
}

func TestSupersetIgnoresExtraKeys(t *testing.T) {
	actual := ldvalue.ObjectBuild().
		Set("id", ldvalue.String("m1")).
		Set("name", ldvalue.String("Inbox")).
		Set("unexpected", ldvalue.Int(42)).
		Build()
	r := Match(actual, SupersetOf(map[string]Template{
		"id": AnyString(),
	}))
	assert.True(t, r.OK)
}

func TestSupersetFailsOnMissingKey(t *testing.T) {
	actual := ldvalue.ObjectBuild().Set("id", ldvalue.String("m1")).Build()
	r := Match(actual, SupersetOf(map[string]Template{
		"id":   AnyString(),
		"name": AnyString(),
	}))
	require.False(t, r.OK)
	assert.Equal(t, "name", r.PathString())
	assert.Equal(t, "required key is absent", r.Reason)
}

func TestSupersetFailsOnNonObject(t *testing.T) {
	r := Match(ldvalue.String("not an object"), SupersetOf(nil))
	require.False(t, r.OK)
	assert.Contains(t, r.Reason, "want object")
}

func TestNestedMismatchReportsFullPath(t *testing.T) {
	actual := ldvalue.ObjectBuild().
		Set("created", ldvalue.ObjectBuild().
			Set("new", ldvalue.ObjectBuild().
				Set("sortOrder", ldvalue.String("0")).
				Build()).
			Build()).
		Build()
	r := Match(actual, SupersetOf(map[string]Template{
		"created": SupersetOf(map[string]Template{
			"new": SupersetOf(map[string]Template{
				"sortOrder": Int(0),
			}),
		}),
	}))
	require.False(t, r.OK)
	assert.Equal(t, "created.new.sortOrder", r.PathString())
	assert.Equal(t, `"0"`, r.Actual)
}

func TestSequenceRequiresSameLength(t *testing.T) {
	actual := ldvalue.ArrayOf(ldvalue.Int(1), ldvalue.Int(2))
	r := Match(actual, Sequence(AnyNumber()))
	require.False(t, r.OK)
	assert.Contains(t, r.Reason, "2 elements, want 1")

	assert.True(t, Match(actual, Sequence(Int(1), Int(2))).OK)
	assert.True(t, Match(ldvalue.ArrayOf(), Sequence()).OK)
}

func TestSequenceElementPath(t *testing.T) {
	actual := ldvalue.ArrayOf(ldvalue.Int(1), ldvalue.String("two"))
	r := Match(actual, Sequence(Int(1), Int(2)))
	require.False(t, r.OK)
	assert.Equal(t, "1", r.PathString())
}

func TestLiteralDeepEquality(t *testing.T) {
	v := ldvalue.ObjectBuild().
		Set("a", ldvalue.ArrayOf(ldvalue.Int(1), ldvalue.String("x"))).
		Build()
	same := ldvalue.ObjectBuild().
		Set("a", ldvalue.ArrayOf(ldvalue.Int(1), ldvalue.String("x"))).
		Build()
	assert.True(t, Match(same, Literal(v)).OK)

	different := ldvalue.ObjectBuild().
		Set("a", ldvalue.ArrayOf(ldvalue.Int(2), ldvalue.String("x"))).
		Build()
	assert.False(t, Match(different, Literal(v)).OK)
}

func TestMatchDoesNotShareDiagnosticPaths(t *testing.T) {
	// two failing branches of the same template must report their own paths
	template := SupersetOf(map[string]Template{
		"a": SupersetOf(map[string]Template{"x": Int(1)}),
		"b": SupersetOf(map[string]Template{"y": Int(2)}),
	})
	actualA := ldvalue.ObjectBuild().
		Set("a", ldvalue.ObjectBuild().Set("x", ldvalue.Int(9)).Build()).
		Set("b", ldvalue.ObjectBuild().Set("y", ldvalue.Int(2)).Build()).
		Build()
	r := Match(actualA, template)
	require.False(t, r.OK)
	assert.Equal(t, "a.x", r.PathString())
}
