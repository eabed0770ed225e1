// Package singleton provides lazily-initialized, process-wide shared instances.
//
// Two entry points are offered:
//
//   - Holder[T]: one shared instance owned by a variable you declare (usually at
//     package level). The zero value is ready to use and constructs with new(T).
//
//   - Registry: a type-keyed set of holders. Of[T] / Instance[T] return the
//     registry's instance of T without a dedicated package variable.
//
// Both guard construction with sync.Once. Concurrent first callers block until
// the single construction finishes and then all observe the same pointer.
//
// Construction failures are permanent: the constructor never runs twice. TryGet
// reports the recorded error and Get panics with it.
//
// Quick guidance
//
// Use a Holder when the instance belongs to one package:
//
//	var shared = singleton.New(newClient, singleton.WithName("client"))
//
//	func Client() *client { return shared.Get() }
//
// Use the Registry when the owning package should not know about the lifetime:
//
//	cache := singleton.Of(singleton.Default, newCache)
//
// There is no reset, destroy or replace operation.
package singleton
