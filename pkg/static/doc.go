// Package static provides content sources for router.StaticRoute.
//
// Three sources are available:
//
//   - DirSource serves a directory on disk. With watching enabled it keeps an
//     index of the readable files and rebuilds it when fsnotify reports a
//     change.
//   - FSSource serves any fs.FS, typically an embed.FS compiled into the
//     binary.
//   - SQLiteSource serves a content bundle stored in a SQLite database.
//
// All sources take logical names such as "/www/index.html". Names are
// cleaned before use, so ".." cannot escape the source root.
//
// MimeType maps a file name to the content type sent with it.
package static
