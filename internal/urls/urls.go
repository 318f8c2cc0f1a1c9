package urls

// Project and documentation URLs shown in help text and the TUI footer.

// Repository is the project home, shown in the calculator footer.
const Repository = "https://github.com/muurk/keycalc"

// Issues is where bugs are reported
const Issues = "https://github.com/muurk/keycalc/issues"

// RemoteProtocol documents the JSON messages spoken by `keycalc serve`.
const RemoteProtocol = "https://github.com/muurk/keycalc/blob/main/docs/remote-protocol.md"

// KeyReference lists every key glyph and its ASCII aliases.
const KeyReference = "https://github.com/muurk/keycalc/blob/main/docs/keys.md"
