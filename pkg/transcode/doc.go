/*
Package transcode converts math between the interchange format and the editor
document model.

Reading wraps the expression of a Math token in its delimiters, so the model
always stores them as literal, editable characters. Writing checks whether the
delimiters are still intact and degrades to literal text when they are not:

  - disguise mode (blogdown profile): always an inline Code token holding the
    content verbatim;
  - well formed: a Math token with the delimiters stripped, except that a
    whitespace-only expression is written back as plain text;
  - malformed: the content as raw markdown, so it stops being math on the
    next load.

The only hard failure is a math kind outside the known set.
*/
package transcode
