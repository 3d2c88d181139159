// Package deck. See pipeline.go for Pipeline and Collaborators, and
// appclient.go for the application-mode interfaces a caller must adapt to.
//
//	p := deck.New(deck.Collaborators{
//		ResetToFirmwareAndClose: session.resetAndClose,
//		OpenAppClient:           session.openAppClient,
//		CloseAppClient:          session.closeAppClient,
//		ReenterBootloader:       session.reenterBootloader,
//	})
//	err := p.Run(ctx, artifacts, selection)
package deck
