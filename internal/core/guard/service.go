package guard

import (
	"fmt"
	"io/fs"
	"os/user"
	"path/filepath"
	"strconv"

	"golang.org/x/sys/unix"

	"steward/internal/utils"
)

func NewPrivilegeGuard() *PrivilegeGuard {
	return &PrivilegeGuard{
		filesystemHandler: utils.NewFilesystemExecutor(),
		identityHandler:   &UnixIdentityExecutor{},
		lookupAccount:     lookupAccount,
		walkDir:           filepath.WalkDir,
	}
}

// PrivilegeGuard transfers ownership of the application directory to the
// service account and drops the supervisor's identity to it. Both steps
// are startup-fatal on failure: nothing may run under an unintended
// identity.
type PrivilegeGuard struct {
	filesystemHandler utils.FilesystemHandler
	identityHandler   IdentityHandler
	lookupAccount     func(name string) (AccountIdentity, error)
	walkDir           func(root string, fn fs.WalkDirFunc) error
}

func lookupAccount(name string) (AccountIdentity, error) {
	u, err := user.Lookup(name)
	if err != nil {
		return AccountIdentity{}, err
	}
	uid, err := strconv.Atoi(u.Uid)
	if err != nil {
		return AccountIdentity{}, fmt.Errorf("account %s has non-numeric uid %q", name, u.Uid)
	}
	gid, err := strconv.Atoi(u.Gid)
	if err != nil {
		return AccountIdentity{}, fmt.Errorf("account %s has non-numeric gid %q", name, u.Gid)
	}
	return AccountIdentity{Name: name, Uid: uid, Gid: gid}, nil
}

// EnsureOwnership recursively transfers ownership of dir to the service
// account. The account must already exist (created during assembly).
func (g *PrivilegeGuard) EnsureOwnership(account string, dir string) error {
	identity, err := g.lookupAccount(account)
	if err != nil {
		return fmt.Errorf("service account %s not found: %w", account, err)
	}

	err = g.walkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		return g.filesystemHandler.Lchown(path, identity.Uid, identity.Gid)
	})
	if err != nil {
		return fmt.Errorf("ownership transfer of %s to %s failed: %w", dir, account, err)
	}
	return nil
}

// Drop switches the running identity to the service account:
// supplementary groups first, then gid, then uid. After this returns,
// no subsequent step executes with elevated privilege.
func (g *PrivilegeGuard) Drop(account string) error {
	identity, err := g.lookupAccount(account)
	if err != nil {
		return fmt.Errorf("service account %s not found: %w", account, err)
	}
	if identity.Uid == 0 {
		return fmt.Errorf("service account %s is a superuser account", account)
	}

	if err := g.identityHandler.Setgroups([]int{identity.Gid}); err != nil {
		return fmt.Errorf("setgroups failed: %w", err)
	}
	if err := g.identityHandler.Setresgid(identity.Gid, identity.Gid, identity.Gid); err != nil {
		return fmt.Errorf("setresgid failed: %w", err)
	}
	if err := g.identityHandler.Setresuid(identity.Uid, identity.Uid, identity.Uid); err != nil {
		return fmt.Errorf("setresuid failed: %w", err)
	}

	// verify: a partially applied drop is a security defect
	if g.identityHandler.Getuid() != identity.Uid || g.identityHandler.Geteuid() != identity.Uid {
		return fmt.Errorf("privilege drop verification failed: uid=%d euid=%d", g.identityHandler.Getuid(), g.identityHandler.Geteuid())
	}
	if g.identityHandler.Getgid() != identity.Gid || g.identityHandler.Getegid() != identity.Gid {
		return fmt.Errorf("privilege drop verification failed: gid=%d egid=%d", g.identityHandler.Getgid(), g.identityHandler.Getegid())
	}
	return nil
}

type UnixIdentityExecutor struct{}

func (e *UnixIdentityExecutor) Setgroups(gids []int) error {
	return unix.Setgroups(gids)
}

func (e *UnixIdentityExecutor) Setresgid(rgid, egid, sgid int) error {
	return unix.Setresgid(rgid, egid, sgid)
}

func (e *UnixIdentityExecutor) Setresuid(ruid, euid, suid int) error {
	return unix.Setresuid(ruid, euid, suid)
}

func (e *UnixIdentityExecutor) Getuid() int {
	return unix.Getuid()
}

func (e *UnixIdentityExecutor) Geteuid() int {
	return unix.Geteuid()
}

func (e *UnixIdentityExecutor) Getgid() int {
	return unix.Getgid()
}

func (e *UnixIdentityExecutor) Getegid() int {
	return unix.Getegid()
}
