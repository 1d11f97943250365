// Package assets provides the component stylesheets and the standalone page
// template used when a rendered fragment is written as a full HTML page.
//
// Assets are looked up by bare name. AssetResolver walks an ordered chain of
// loaders, an optional FilesystemLoader on an override directory followed by
// the EmbeddedLoader, and stops at the first hit or the first error other
// than not-found:
//
//	{dir}/styles/{name}.css        component styles (callouts, code, tables)
//	{dir}/templates/{name}.html    html/template page layouts
//
// Names are restricted to ASCII letters, digits, '-' and '_'. Override files
// reached through symlinks must resolve inside the override directory.
package assets
