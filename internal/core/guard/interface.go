package guard

type GuardHandler interface {
	EnsureOwnership(account string, dir string) error
	Drop(account string) error
}

// IdentityHandler wraps the process identity syscalls so the drop
// sequence can be exercised without actually changing identity.
type IdentityHandler interface {
	Setgroups(gids []int) error
	Setresgid(rgid, egid, sgid int) error
	Setresuid(ruid, euid, suid int) error
	Getuid() int
	Geteuid() int
	Getgid() int
	Getegid() int
}
