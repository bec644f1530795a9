package pending

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestCanApprove(t *testing.T) {
	owner := uuid.New()
	member := uuid.New()

	assert.True(t, CanApprove(owner, owner, nil), "owner always approves")
	assert.False(t, CanApprove(member, owner, nil))
	assert.False(t, CanApprove(member, owner, &TeamMember{OwnerAccountID: owner, MemberAccountID: member}))
	assert.True(t, CanApprove(member, owner, &TeamMember{OwnerAccountID: owner, MemberAccountID: member, CanTransfer: true}))
	assert.False(t, CanApprove(member, owner, &TeamMember{OwnerAccountID: uuid.New(), MemberAccountID: member, CanTransfer: true}))
}
