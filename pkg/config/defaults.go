package config

// Default returns the configuration used when no config file is present.
// It reproduces the Scarab release layout.
func Default() *Config {
	cfg := &Config{}
	cfg.ApplyDefaults()
	return cfg
}

// ApplyDefaults fills every empty field with its default value.
// A renames map that was set explicitly, even to an empty map, is kept.
func (c *Config) ApplyDefaults() {
	f := &c.Feed
	setDefault(&f.Title, "Scarab Update")
	setDefault(&f.Link, "https://raw.githubusercontent.com/TheMulhima/Scarab/master/appcast.xml")
	setDefault(&f.Language, "en")
	setDefault(&f.ItemTitle, "Scarab Update v{{.Version}}")
	setDefault(&f.ReleaseNotesURL, "https://raw.githubusercontent.com/TheMulhima/Scarab/static-resources/Changelogs/v{{.Version}}.md")
	setDefault(&f.DownloadURL, "https://github.com/TheMulhima/Scarab/releases/download/v{{.Version}}/Scarab.AU.exe")
	setDefault(&f.OS, "windows")
	setDefault(&f.Type, "application/octet-stream")
	setDefault(&f.Output, "appcast.xml")
	if f.Length == 0 {
		f.Length = 12288
	}

	b := &c.Bundle
	setDefault(&b.Suffix, ".app")
	setDefault(&b.Executable, "Scarab")
	setDefault(&b.ContentsDir, "Contents")
	setDefault(&b.ExecutableDir, "MacOS")
	setDefault(&b.Launcher, "run")
	setDefault(&b.Archive, "mac.zip")
	if b.Renames == nil {
		b.Renames = map[string]string{
			"Scarab.pdb": "run.pdb",
		}
	}

	g := &c.Release.GitHub
	setDefault(&g.Owner, "TheMulhima")
	setDefault(&g.Repo, "Scarab")
	setDefault(&g.Token, "env(GITHUB_TOKEN)")
}

func setDefault(field *string, value string) {
	if *field == "" {
		*field = value
	}
}
