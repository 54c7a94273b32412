package appfs

import "embed"

// FS holds the app's embedded static files: goose SQL migrations
// and email templates. Directory patterns skip files starting with
// an underscore, so the base email templates are named explicitly.
//go:embed assets migrations
//go:embed assets/templates/email/_base.txt assets/templates/email/_base.gohtml
var FS embed.FS
