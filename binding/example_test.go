package binding_test

import (
	"errors"
	"fmt"

	"github.com/erikrandall/csla/binding"
)

func ExampleList() {
	l := binding.NewList([]string{"ant", "bee"})
	sub := l.Subscribe(func(ev binding.ListChanged) {
		fmt.Println(ev)
	})

	_, _ = l.Append("cat")
	_ = l.Set(0, "asp")
	_ = l.RemoveAt(1)

	sub.Unsubscribe()
	_, _ = l.Append("dog")
	fmt.Println(l.Items())
	// Output:
	// item_added index=2
	// item_changed index=0
	// item_deleted index=1
	// [asp cat dog]
}

func ExampleList_reentrantMutation() {
	l := binding.NewList([]int{1})
	l.Subscribe(func(binding.ListChanged) {
		_, err := l.Append(99)
		fmt.Println(errors.Is(err, binding.ErrReentrantMutation))
	})

	_, _ = l.Append(2)
	fmt.Println(l.Len())
	// Output:
	// true
	// 2
}
