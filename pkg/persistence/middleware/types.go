// Package middleware wraps a SlotStore with extra behavior.
package middleware

import "github.com/aretw0/disconnected/pkg/ports"

// Middleware allows wrapping a SlotStore to add behavior.
type Middleware func(ports.SlotStore) ports.SlotStore
