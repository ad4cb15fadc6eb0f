package backtrace

import (
	"strconv"
	"strings"
)

const hexPrefix = "0x"

// ParseAddresses extracts the program counter of every PC:SP frame in s.
// Tokens that do not start with 0x, carry no colon-separated offset, or
// whose address part is not hexadecimal are skipped.
func ParseAddresses(s string) []string {
	var addrs []string
	for _, token := range strings.Fields(s) {
		if !strings.HasPrefix(token, hexPrefix) {
			continue
		}
		addr, _, found := strings.Cut(token, ":")
		if !found || !isHexAddress(addr) {
			continue
		}
		addrs = append(addrs, addr)
	}
	return addrs
}

func isHexAddress(addr string) bool {
	digits := strings.TrimPrefix(addr, hexPrefix)
	if digits == "" || len(digits) > 16 {
		return false
	}
	_, err := strconv.ParseUint(digits, 16, 64)
	return err == nil
}
