package controllers

// WaitForNotifications blocks until every post-create notification finished.
func WaitForNotifications() {
	notifyWG.Wait()
}
