package validate

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type sample struct {
	Code   string `validate:"required,max=8"`
	Action string `validate:"required,oneof=approve deny"`
}

func TestStruct_Valid(t *testing.T) {
	assert.NoError(t, Struct(sample{Code: "AB12CD34", Action: "approve"}))
}

func TestStruct_ReportsEveryField(t *testing.T) {
	err := Struct(sample{Code: "TOOLONGCODE", Action: "ban"})
	assert.EqualError(t, err, "field 'Code' failed 'max'; field 'Action' failed 'oneof'")
}

func TestVar(t *testing.T) {
	assert.NoError(t, Var("UNVERIFIED_ROLE_ID", "123456789012345678", "required,number"))
	assert.EqualError(t, Var("UNVERIFIED_ROLE_ID", "abc", "required,number"), "UNVERIFIED_ROLE_ID failed 'number'")
	assert.EqualError(t, Var("UNVERIFIED_ROLE_ID", "", "required,number"), "UNVERIFIED_ROLE_ID failed 'required'")
}
