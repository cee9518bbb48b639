/*
Package pandoc implements the subset of the Pandoc JSON interchange format that
mathspan reads and writes.

Tokens are kept generic ({"t": type, "c": content}); only the token types the
math transcoder cares about are given names. The Output type is the generic
token writer used by transcoders: nested WriteToken calls build token content,
WriteText and WriteRawMarkdown emit literal text.
*/
package pandoc
