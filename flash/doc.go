// Package flash. See engine.go for Engine and the streaming algorithm.
//
//	eng := flash.New(cloaderInstance)
//	err := eng.Flash(ctx, geometry, imageBytes, flash.Options{
//		Progress: func(p flash.Progress) { fmt.Println(p.Message, p.Percent) },
//	})
package flash
