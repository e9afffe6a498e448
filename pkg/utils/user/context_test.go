package user_test

import (
	"context"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/counsellor/pkg/domain/types"
	"github.com/secmon-lab/counsellor/pkg/utils/user"
)

func TestUserID(t *testing.T) {
	ctx := context.Background()
	gt.Equal(t, user.FromContext(ctx), types.UserID(""))

	ctx = user.WithUserID(ctx, "u-123")
	gt.Equal(t, user.FromContext(ctx), types.UserID("u-123"))
}
