/*
Package ports defines the driven ports (interfaces) of mathspan.

These interfaces decouple the typeset pipeline and the document sessions from
the concrete renderers, display trees and storage backends.

# Key Interfaces

  - Surface: a display region a typesetter renders into, plus the attachment query.
  - Typesetter: the external, non-reentrant math rendering service.
  - DocumentStore: persists editor documents.
  - DistributedLocker: serializes document access across replicas.
*/
package ports
