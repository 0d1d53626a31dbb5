package svm

type SvmStoreHandler interface {
	SetServiceState() error
}

type SvmHandler interface {
	StoreService(serviceId string, name string, port int, account string, command []string) error
	UpdateService(serviceId string, state string, pid int) error
	UpdateExitNote(serviceId string, note string) error
	RemoveService(serviceId string) error
	GetServiceList() ([]ServiceInfo, error)
	GetServiceById(serviceId string) (ServiceInfo, error)
	GetServiceByName(name string) (ServiceInfo, error)
	ResolveServiceId(str string) (string, error)
}
