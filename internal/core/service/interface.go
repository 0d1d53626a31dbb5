package service

type SupervisorServiceHandler interface {
	Boot() (string, error)
	Start() (string, error)
	Stop() (string, error)
	Status() (ServiceStatusModel, error)
	Logs(lines int) ([]byte, error)
}
