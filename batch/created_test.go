package batch

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"
)

func setResponseArgs() ldvalue.Value {
	return ldvalue.ObjectBuild().
		Set("accountId", ldvalue.String("acct")).
		Set("created", ldvalue.ObjectBuild().
			Set("new", ldvalue.ObjectBuild().
				Set("id", ldvalue.String("M123")).
				Set("sortOrder", ldvalue.Int(0)).
				Build()).
			Build()).
		Set("notCreated", ldvalue.ObjectBuild().
			Set("bad", ldvalue.ObjectBuild().
				Set("type", ldvalue.String("invalidProperties")).
				Set("description", ldvalue.String("name is required")).
				Set("properties", ldvalue.ArrayOf(ldvalue.String("name"))).
				Build()).
			Build()).
		Build()
}

func TestExtractCreated(t *testing.T) {
	created := ExtractCreated(setResponseArgs())
	require.Len(t, created, 1)
	assert.Equal(t, "M123", created["new"].ServerID)
	assert.Equal(t, 0, created["new"].Properties.GetByKey("sortOrder").IntValue())
}

func TestExtractNotCreated(t *testing.T) {
	notCreated := ExtractNotCreated(setResponseArgs())
	require.Len(t, notCreated, 1)
	assert.Equal(t, "invalidProperties", notCreated["bad"].Type)
	assert.Equal(t, "name is required", notCreated["bad"].Description)
	assert.Equal(t, []string{"name"}, notCreated["bad"].Properties)
}

func TestExtractOnResponseWithoutCreationKeys(t *testing.T) {
	args := ldvalue.ObjectBuild().Set("accountId", ldvalue.String("acct")).Build()
	assert.Empty(t, ExtractCreated(args))
	assert.Empty(t, ExtractNotCreated(args))
}

func TestCreatedIDResolvesAndIsIdempotent(t *testing.T) {
	outcome := ExtractCreation(setResponseArgs())

	id, err := outcome.CreatedID("new")
	require.NoError(t, err)
	assert.Equal(t, "M123", id)

	again, err := outcome.CreatedID("new")
	require.NoError(t, err)
	assert.Equal(t, id, again)

	// the resolved id equals the created object's own id property
	assert.Equal(t, outcome.Created["new"].Properties.GetByKey("id").StringValue(), id)
}

func TestCreatedIDDistinguishesRejectedFromAbsent(t *testing.T) {
	outcome := ExtractCreation(setResponseArgs())

	_, err := outcome.CreatedID("bad")
	var unresolved *UnresolvedCreationReferenceError
	require.True(t, errors.As(err, &unresolved))
	require.NotNil(t, unresolved.NotCreated)
	assert.Equal(t, "invalidProperties", unresolved.NotCreated.Type)
	assert.Contains(t, err.Error(), "rejected")

	_, err = outcome.CreatedID("never-offered")
	require.True(t, errors.As(err, &unresolved))
	assert.Nil(t, unresolved.NotCreated)
	assert.Contains(t, err.Error(), "does not appear")
}

func TestCreationIDs(t *testing.T) {
	args := ldvalue.ObjectBuild().
		Set("create", ldvalue.ObjectBuild().
			Set("a", ldvalue.ObjectBuild().Build()).
			Set("b", ldvalue.ObjectBuild().Build()).
			Build()).
		Build()
	ids := CreationIDs(args)
	assert.ElementsMatch(t, []string{"a", "b"}, ids)

	assert.Empty(t, CreationIDs(ldvalue.ObjectBuild().Build()))
	assert.Empty(t, CreationIDs(ldvalue.ObjectBuild().
		Set("create", ldvalue.String("not an object")).Build()))
}
