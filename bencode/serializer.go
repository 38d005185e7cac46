package bencode

import (
	"sort"
	"strconv"
)

// Encode writes node to dst in canonical Bencode form. Dictionary keys are
// always emitted in byte-lexicographic order regardless of the order the
// [Node] tree was built in.
func Encode(node *Node, dst IDestination, opts ...Option) error {
	_ = newConfig(opts...) // reserved for future encode-side options

	return encodeNode(node, dst)
}

func encodeNode(n *Node, dst IDestination) error {
	if n == nil {
		return nil
	}

	switch n.Kind {
	case KindInteger:
		return dst.Add([]byte("i" + strconv.FormatInt(n.integer, 10) + "e"))
	case KindString:
		prefix := strconv.Itoa(len(n.str)) + ":"
		if err := dst.Add([]byte(prefix)); err != nil {
			return err
		}

		return dst.Add(n.str)
	case KindList:
		if err := dst.Add([]byte{'l'}); err != nil {
			return err
		}

		for _, item := range n.list {
			if err := encodeNode(item, dst); err != nil {
				return err
			}
		}

		return dst.Add([]byte{'e'})
	case KindDictionary:
		entries := append([]DictEntry(nil), n.dict...)
		sort.Slice(entries, func(i, j int) bool {
			return string(entries[i].Key) < string(entries[j].Key)
		})

		if err := dst.Add([]byte{'d'}); err != nil {
			return err
		}

		for _, e := range entries {
			if err := encodeNode(NewString(e.Key), dst); err != nil {
				return err
			}

			if err := encodeNode(e.Value, dst); err != nil {
				return err
			}
		}

		return dst.Add([]byte{'e'})
	default:
		return nil
	}
}
