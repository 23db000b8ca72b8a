// Package site discovers the content of a site and its themes, and turns
// templated files into evaluated pages.
//
// Content roots are walked in priority order: the site root, each configured
// theme, then the builtin root. A relative path is owned by the first root
// that holds it. Directories whose name starts with the exclusion prefix
// ("_" by default) are not walked; they hold metadata such as includes.
package site
