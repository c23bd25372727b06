// Package kvstore registers the k6/x/kvstore extension.
package kvstore

import (
	"go.k6.io/k6/js/modules"

	"github.com/oshokin/kvstore/kv"
)

// init registers the kvstore module with the k6 runtime.
func init() {
	modules.Register("k6/x/kvstore", kv.New())
}
