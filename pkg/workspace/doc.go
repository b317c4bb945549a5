// Package workspace resolves @file references in user input and loads file
// contents from the working directory as conversation context.
//
// A Workspace is rooted at a base directory and reads through an io/fs.FS,
// so references can never escape the root. It provides:
//
//   - Resolve: extract @token references and validate them
//   - LoadFiles: read referenced files, reporting failures as error blocks
//   - LoadDirectory: best-effort recursive scan capped at a file count
//   - ListSupportedFiles: the file list used for @ completion
package workspace
