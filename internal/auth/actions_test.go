package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateAction(t *testing.T) {
	assert.True(t, ValidateAction(PostCreateSystem))
	assert.True(t, ValidateAction(AllWildcard))
	assert.False(t, ValidateAction("post:publish"))
	assert.True(t, ValidateObjectType(ObjectTypeFeed))
	assert.False(t, ValidateObjectType("plan"))
}

func TestValidateGrant(t *testing.T) {
	tests := []struct {
		objType string
		action  string
		wantErr string
	}{
		{objType: ObjectTypePost, action: PostDelete},
		{objType: ObjectTypeComment, action: CommentWildcard},
		{objType: ObjectTypeAdmin, action: AdminFileDelete},
		{objType: ObjectTypeAll, action: AllWildcard},
		{objType: ObjectTypeAll, action: FeedUpdate},
		{objType: ObjectTypeFeed, action: AllWildcard},
		{objType: "plan", action: PostDelete, wantErr: "unknown object type"},
		{objType: ObjectTypePost, action: "post:publish", wantErr: "unknown action"},
		{objType: ObjectTypePost, action: CommentDelete, wantErr: "does not apply"},
	}
	for _, tt := range tests {
		t.Run(tt.objType+" "+tt.action, func(t *testing.T) {
			err := ValidateGrant(tt.objType, tt.action)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestDefaultPoliciesAreValidGrants(t *testing.T) {
	for _, rule := range DefaultPolicies() {
		assert.NoError(t, ValidateGrant(rule.V1, rule.V2), rule.String())
	}
}
