package image

type CopyEntry struct {
	Src string
	Dst string
}

type AccountSpec struct {
	Name  string
	Home  string
	Shell string
}

// AssembleModel is the build specification: ordered system packages, a
// language-level dependency manifest, a filesystem copy set and the
// service account to provision. Consumed once per image build.
type AssembleModel struct {
	Name           string
	PackageManager string // default: apt-get
	Packages       []string
	ManifestPath   string
	InstallCommand []string // default: pip install --no-cache-dir -r <manifest>
	Copy           []CopyEntry
	Account        AccountSpec
}
