package appfs

import "embed"

// FS embeds the database migrations and email templates so that the
// binaries stay self-contained. The template glob is explicit because
// directory embedding would skip the underscore-prefixed base templates.
//go:embed migrations assets/templates/email/*
var FS embed.FS
