package middleware

import "github.com/aretw0/regtrain/pkg/ports"

// Middleware allows wrapping a TrackingStore to add behavior.
type Middleware func(ports.TrackingStore) ports.TrackingStore
