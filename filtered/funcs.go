package filtered

// IndexOf returns the view position of the first element equal to v, or -1.
func IndexOf[T comparable](l *List[T], v T) int {
	return l.IndexFunc(func(x T) bool { return x == v })
}

// Contains reports whether v is visible in l.
func Contains[T comparable](l *List[T], v T) bool {
	return IndexOf(l, v) >= 0
}

// Remove removes the first visible element equal to v from the source.
// It reports whether an element was removed.
func Remove[T comparable](l *List[T], v T) (bool, error) {
	i := IndexOf(l, v)
	if i < 0 {
		return false, nil
	}
	if err := l.RemoveAt(i); err != nil {
		return false, err
	}
	return true, nil
}
