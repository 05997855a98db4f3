package usertags

import "golang.org/x/sys/unix"

// DefaultAttribute is the attribute tags are kept in. Linux only permits
// unprivileged attributes in the user namespace.
const DefaultAttribute = "user.imgtagman.tags"

const errNoAttr = unix.ENODATA
