// Package rewrite applies a port map to the files of one environment.
//
// RewriteConfig turns the committed configuration template into the
// generated configuration: only values that directly follow '=' and end the
// line (or precede a '#' comment) are candidates, and only when they appear
// as keys of the port map. The top-level project_id string is replaced with
// the environment identifier when the template declares it.
//
// RewriteEnvContent rewrites "<host>:<port>" references in environment files
// for a fixed set of local host names. UpdateFiles and RestoreFiles wrap it
// with a backup convention: before a file is changed its current content is
// copied to "<file>.sbwt-backup", and RestoreFiles copies that backup back
// and removes it. Files whose content would not change are never touched.
package rewrite
