package store

import "syscall"

const errnoENOTTY = syscall.ENOTTY
