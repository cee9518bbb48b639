/*
Package mathspan coordinates the rendering and round trip of math spans in a
rich-text document editor.

Math is stored in the editor model as literal delimited text ("$x$",
"$$x$$") so the delimiters stay editable. Documents are read from and written
to the Pandoc JSON interchange format; a node whose delimiters were edited
away degrades to plain text on the next save instead of failing.

Rendering goes through a single-flight queue: at most one typeset runs at a
time, and a node whose display surface is not yet attached gives up its slot
and retries after a short delay.

# Usage

	editor, err := mathspan.New(mathspan.WithProfile(domain.DefaultProfile()))
	if err != nil {
		log.Fatal(err)
	}
	defer editor.Close()

	doc, err := editor.Read(os.Stdin)
	if err != nil {
		log.Fatal(err)
	}

	root := surface.NewRoot()
	mounted := editor.Mount(doc, root)
	defer mounted.Unmount()

	// ... user edits arrive as mutations of the views' content elements ...

	if err := editor.Write(os.Stdout, mounted.Snapshot()); err != nil {
		log.Fatal(err)
	}
*/
package mathspan
