// Package cli builds the editor, the typesetter and the document store from
// configuration, for the commands of cmd/mathspan.
package cli
