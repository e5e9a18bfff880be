/*
Package ports defines the driven ports (interfaces) for regtrain.

These interfaces decouple the trainer and the alerter from external implementations,
allowing them to work with various tracking backends, artifact locations and mail relays.

# Key Interfaces

  - TrackingStore: Persists experiments and runs with their params, metrics and artifact references.
  - ArtifactStore: Persists the bytes of logged artifacts (e.g. the serialized model).
  - Mailer: Delivers a single notification message.
*/
package ports
