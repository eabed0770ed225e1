// Package sample exposes the process-wide Sample through SharedInstance.
package sample

import (
	"time"

	"github.com/google/uuid"

	"github.com/sghaida/shared/singleton"
)

// Sample is the shared object. It carries no behavior; ID and CreatedAt only
// make its identity observable.
type Sample struct {
	ID        string
	CreatedAt time.Time
}

var shared = singleton.New(newSample, singleton.WithName("sample"))

func newSample() *Sample {
	return &Sample{ID: uuid.NewString(), CreatedAt: time.Now().UTC()}
}

// SharedInstance returns the process-wide Sample, creating it on first call.
func SharedInstance() *Sample { return shared.Get() }
