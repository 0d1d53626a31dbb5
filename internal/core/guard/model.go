package guard

type AccountIdentity struct {
	Name string
	Uid  int
	Gid  int
}
