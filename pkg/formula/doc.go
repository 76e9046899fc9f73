// Package formula discovers recipe boxes and runs their formulas.
//
// A box is a directory holding a manifest, saltbox.yaml or saltbox.toml. The
// manifest names the box and lists its formulas. A formula is a named salt
// invocation with typed arguments:
//
//	name: nginx
//	description: |
//	  Installs and configures **nginx**.
//	formulas:
//	  - name: nginx.install
//	    runner: salt-call --local state.apply
//	    saltenv: base
//	    config:
//	      salt.loglevel: info
//	    args:
//	      - name: --port
//	        dest: port
//	        type: int
//	        default: 80
//	      - name: server_name
//	        positional: true
//	        required: true
//
// Arguments are parsed with pflag and passed to salt as a JSON pillar:
//
//	salt-call --local state.apply nginx.install pillar={"port":80,...} saltenv=base
//
// YAML scalars may reference the environment as ${VAR}; unset variables are
// left as written.
package formula
