/*
Package config manages the persisted vaultlink configuration.

	            +-------------+
	            |   Config    |
	            | (conf.json) |
	            +------+------+
	                   |
	   +-------+-------+-------+-------+
	   |       |               |       |
	+--+--+ +--+--+         +--+--+ +--+--+
	| JSON| | YAML|         | HCL | | TOML|
	+-----+ +-----+         +-----+ +-----+

🎯 Purpose:
- Loads the stored vault/table/viewer paths
- Merges command line and environment overrides
- Persists the merged record only when it changed and is valid

🔄 Flow:
1. LoadOrCreate reads the file (creating an empty one if missing)
2. Merge applies overrides (flags win over environment)
3. Validate checks the vault directory and translation table
4. Save rewrites the file in its own format

⚠️ Errors:
ConfigError is fatal and carries a remediation hint. It is always returned
before any note is touched.

🔍 Example:

	cfg, err := config.Resolve(ctx, config.DefaultPath, config.Overrides{
		VaultPath: "/notes",
	})
	if err != nil {
		var cerr *config.ConfigError
		if errors.As(err, &cerr) {
			fmt.Println(cerr.Hint)
		}
		return err
	}
*/
package config
