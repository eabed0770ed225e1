// Package shared provides a lazily-initialized, process-wide shared instance
// accessor for Go.
//
// The repository is split into:
//
//   - singleton: Holder[T] (one instance, constructed at most once) and a
//     type-keyed Registry for callers that do not want their own package variable
//   - sample: a concrete SharedInstance() accessor built on a Holder
//   - cmd/sharedinstance: a small CLI that probes the sample accessor from many
//     goroutines and reports whether every caller saw the same instance
//
// Construction is guarded by sync.Once, so concurrent first access builds the
// instance exactly once. There is no reset or replace: once constructed, an
// instance lives for the rest of the process.
//
// Import
//
//	"github.com/sghaida/shared/singleton"
package shared
