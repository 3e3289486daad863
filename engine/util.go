package engine

import (
	"sort"
	"strconv"
	"strings"
)

func parseFid(fileName string, fid *uint32) (int, error) {
	base := strings.TrimSuffix(fileName, ".cq")
	n, err := strconv.ParseUint(base, 10, 32)
	if err != nil {
		return 0, err
	}
	*fid = uint32(n)
	return len(base), nil
}

func sortUint32(xs []uint32) {
	sort.Slice(xs, func(i, j int) bool { return xs[i] < xs[j] })
}
