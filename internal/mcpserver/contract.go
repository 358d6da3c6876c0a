package mcpserver

// ScrapFormat describes the markdown dialect of scraps for LLM consumers
// that read or reference them.
const ScrapFormat = `# Scrap Format

A scrap is one Markdown file in the scraps directory.

## Identity

- The file stem is the scrap title: ` + "`" + `Rust Guide.md` + "`" + ` is titled "Rust Guide".
- A file one directory deep has a context: ` + "`" + `Book/Go.md` + "`" + ` is "Go" in context "Book".
- Deeper nesting is not allowed.
- A scrap key is written ` + "`" + `title` + "`" + ` or ` + "`" + `ctx/title` + "`" + `.

## Links

- ` + "`" + `[[title]]` + "`" + ` links to the scrap with that key.
- ` + "`" + `[[ctx/title]]` + "`" + ` links to a scrap in a context.
- ` + "`" + `[[title|display]]` + "`" + ` shows "display" instead of the title.
- With two or more pipes the whole text is the title.
- Links inside code spans and code blocks are ignored.
- A link must fit on one line; the first ` + "`" + `]]` + "`" + ` closes it.

## Tags

- A link whose target has no scrap is a tag. Tag pages list every scrap linking to it.
- ` + "`" + `#[[tag]]` + "`" + ` marks a tag explicitly. It is not a link and silences lint warnings for
  ` + "`" + `[[tag]]` + "`" + ` in the same scrap.

## Other syntax

- GitHub flavoured tables, strikethrough and task lists.
- ` + "`" + `<https://example.com>` + "`" + ` autolinks.
- ` + "```" + `mermaid` + " code blocks are rendered as diagrams.\n" + `- The first absolute image URL is the scrap thumbnail.
`
