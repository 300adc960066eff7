package rewrite

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"

	"sbwt/internal/ports"
	"sbwt/pkg/logging"
)

// BackupSuffix marks the pristine copy of a rewritten environment file.
const BackupSuffix = ".sbwt-backup"

// LocalHosts are the host literals whose port references get rewritten.
var LocalHosts = []string{
	"localhost",
	"127.0.0.1",
	"0.0.0.0",
	"host.docker.internal",
}

// HostPortPattern matches "<host>:<port>" for every host in LocalHosts.
var HostPortPattern = buildHostPortRe(LocalHosts)

func buildHostPortRe(hosts []string) *regexp.Regexp {
	quoted := make([]string, len(hosts))
	for i, h := range hosts {
		quoted[i] = regexp.QuoteMeta(h)
	}
	return regexp.MustCompile(`(` + strings.Join(quoted, "|") + `):(\d+)`)
}

// RewriteEnvContent replaces "<host>:<old>" with "<host>:<new>" for every
// changed entry of portMap and every host in LocalHosts. Ports that are not
// directly preceded by one of those hosts and a colon are left alone.
func RewriteEnvContent(text string, portMap ports.PortMap) string {
	changed := portMap.Changed()
	if len(changed) == 0 {
		return text
	}
	return HostPortPattern.ReplaceAllStringFunc(text, func(match string) string {
		m := HostPortPattern.FindStringSubmatch(match)
		newPort, ok := changed[m[2]]
		if !ok {
			return match
		}
		return m[1] + ":" + newPort
	})
}

// BackupPath returns the backup location for path.
func BackupPath(path string) string {
	return path + BackupSuffix
}

// HasBackup reports whether path has been rewritten and not yet restored.
func HasBackup(path string) bool {
	_, err := os.Stat(BackupPath(path))
	return err == nil
}

// UpdateFiles rewrites each file whose content changes under portMap. The
// live file is copied to its backup path immediately before it is
// overwritten. It returns the paths that were modified; on error the list
// holds the files modified before the failure.
func UpdateFiles(paths []string, portMap ports.PortMap) ([]string, error) {
	var modified []string
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return modified, fmt.Errorf("failed to read %s: %w", path, err)
		}
		original := string(data)
		rewritten := RewriteEnvContent(original, portMap)
		if rewritten == original {
			logging.Debug("Rewrite", "No port references to change in %s", path)
			continue
		}

		mode := fileMode(path)
		if err := os.WriteFile(BackupPath(path), data, mode); err != nil {
			return modified, fmt.Errorf("failed to back up %s: %w", path, err)
		}
		if err := os.WriteFile(path, []byte(rewritten), mode); err != nil {
			return modified, fmt.Errorf("failed to write %s: %w", path, err)
		}
		logging.Info("Rewrite", "Updated ports in %s", path)
		modified = append(modified, path)
	}
	return modified, nil
}

// RestoreFiles copies each existing backup over its live file and deletes
// the backup. Files without a backup are skipped.
func RestoreFiles(paths []string) ([]string, error) {
	var restored []string
	var errs []error
	for _, path := range paths {
		backup := BackupPath(path)
		data, err := os.ReadFile(backup)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			errs = append(errs, fmt.Errorf("failed to read backup %s: %w", backup, err))
			continue
		}
		if err := os.WriteFile(path, data, fileMode(backup)); err != nil {
			errs = append(errs, fmt.Errorf("failed to restore %s: %w", path, err))
			continue
		}
		if err := os.Remove(backup); err != nil {
			errs = append(errs, fmt.Errorf("failed to remove backup %s: %w", backup, err))
		}
		logging.Info("Rewrite", "Restored %s", path)
		restored = append(restored, path)
	}
	return restored, errors.Join(errs...)
}

func fileMode(path string) os.FileMode {
	info, err := os.Stat(path)
	if err != nil {
		return 0644
	}
	return info.Mode().Perm()
}
