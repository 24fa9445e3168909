package pagealloc

// calcSizeFor computes the bitmap tree layout for a region of the given
// byte length: the number of pages is rounded up to whole pages, the leaf
// layer word count is rounded up to the nearest power of WordBits (so the
// tree is a complete WordBits-ary tree), and the total word count across all
// layers follows from summing a geometric series. ok is false if the
// resulting tree would be taller than MaxHeight.
func calcSizeFor(lengthBytes uint64) (words uint64, height int, ok bool) {
	pages := (lengthBytes + PageSize - 1) / PageSize
	if pages == 0 {
		return 0, 0, false
	}

	leafWordsRaw := (pages + WordBits - 1) / WordBits
	leafWords := roundUpToPower(leafWordsRaw, WordBits)

	h := heightFromLeafWords(leafWords)
	if h > MaxHeight {
		return 0, 0, false
	}

	return totalWordsFromLeafWords(leafWords), h, true
}

// roundUpToPower returns the smallest power of base that is >= num.
func roundUpToPower(num, base uint64) uint64 {
	p := uint64(1)
	for p < num {
		p *= base
	}
	return p
}

// heightFromLeafWords returns the number of layers (including the leaf
// layer) in a complete WordBits-ary tree with leafWords leaves.
func heightFromLeafWords(leafWords uint64) int {
	h := 1
	n := leafWords
	for n > 1 {
		n /= WordBits
		h++
	}
	return h
}

// totalWordsFromLeafWords sums the node counts of every layer of a complete
// WordBits-ary tree with leafWords leaves: (WordBits*leafWords - 1) /
// (WordBits - 1).
func totalWordsFromLeafWords(leafWords uint64) uint64 {
	return (WordBits*leafWords - 1) / (WordBits - 1)
}

// layerOffset returns the flat index of the first word in the given layer
// (0 = root) within a tree stored root-first, then layer 1, and so on.
func layerOffset(layer int) uint64 {
	if layer == 0 {
		return 0
	}
	return (ipow(WordBits, layer) - 1) / (WordBits - 1)
}

func ipow(base uint64, exp int) uint64 {
	r := uint64(1)
	for i := 0; i < exp; i++ {
		r *= base
	}
	return r
}
