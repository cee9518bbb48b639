/*
Package domain contains the core models shared by every part of mathspan.

It is kept pure and free of I/O so that the transcoder, the typeset pipeline and
the node views can all agree on the same vocabulary without depending on each
other.

# Key Entities

  - MathKind: Inline or Display math, together with its delimiter policy.
  - MathNode: a math element of the editor document. Its Content holds the
    delimiters as real, editable text.
  - Profile: a target-renderer profile (extension gate and disguise mode).
  - TypesetHooks: observability callbacks around each typeset attempt.
*/
package domain
