package ids

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestParseObjectIDRoundTrip(t *testing.T) {
	oid := primitive.NewObjectID()

	parsed, err := ParseObjectID(oid.Hex())

	require.NoError(t, err)
	require.Equal(t, oid, parsed)
}

func TestParseObjectIDTrimsWhitespace(t *testing.T) {
	oid := primitive.NewObjectID()

	parsed, err := ParseObjectID("  " + oid.Hex() + " ")

	require.NoError(t, err)
	require.Equal(t, oid, parsed)
}

func TestValidateRejectsMalformed(t *testing.T) {
	require.Error(t, Validate("not-an-id"))
	require.Error(t, Validate(""))
	require.Error(t, Validate("507f1f77bcf86cd79943901")) // 23 chars
	require.Error(t, Validate("zzzzzzzzzzzzzzzzzzzzzzzz"))
}

func TestValidateAcceptsWellFormed(t *testing.T) {
	require.NoError(t, Validate("507f1f77bcf86cd799439011"))
}
