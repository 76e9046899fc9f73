// Package paths provides centralized path handling for saltbox.
//
// Every path saltbox touches lives under a single installation prefix. This
// package turns the prefix and the configured relative layout into concrete
// absolute paths:
//
//   - Registry file: <prefix>/etc/saltbox/registry.txt
//   - Install cache: <prefix>/var/cache/saltbox
//   - Salt config directory: <prefix>/etc/salt
//   - Run directory (pid files): <prefix>/var/run
//   - Salt executables: <prefix>/bin
//   - Bundled base template: <prefix>/share/saltbox/base
//
// # Environment Variables
//
//   - SALTBOX_PREFIX: installation prefix (default: $XDG_DATA_HOME/saltbox)
//
// # Usage
//
//	p, err := paths.New("", paths.DefaultLayout())
//	if err != nil {
//	    log.Fatal(err)
//	}
//	registry := p.RegistryPath()
//	pid := p.PidFile("salt-master.pid")
package paths
