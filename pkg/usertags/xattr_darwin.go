package usertags

import "golang.org/x/sys/unix"

// DefaultAttribute is the attribute Finder reads user tags from.
const DefaultAttribute = "com.apple.metadata:_kMDItemUserTags"

const errNoAttr = unix.ENOATTR
