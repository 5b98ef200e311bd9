package services

// ServiceContainer bundles the service facades for route registration.
type ServiceContainer struct {
	Journal        JournalSvcFacade
	Numbering      NumberingSvcFacade
	Account        AccountSvcFacade
	Master         MasterSvcFacade
	Reporting      ReportingSvcFacade
	Reconciliation ReconciliationSvcFacade
	User           UserSvcFacade
}
