package root

import (
	"github.com/threadline-io/production-portal/apps/cli/cmd/auth"
	"github.com/threadline-io/production-portal/apps/cli/cmd/subscription"
)

func init() {
	Root().AddCommand(auth.Command())
	Root().AddCommand(subscription.Command())
}
