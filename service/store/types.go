package store

import (
	"sync"

	"github.com/yuanzhangdck/azure-glass/model"
)

type service struct {
	mu          sync.Mutex
	accountPath string
	configPath  string
}

// AccountPatch carries the fields of an account edit. Nil pointers
// mean "leave unchanged"; an empty string through a non-nil pointer is
// a deliberate clear (e.g. removing a proxy).
type AccountPatch struct {
	Name        *string            `json:"name,omitempty"`
	Remark      *string            `json:"remark,omitempty"`
	Credentials *model.Credentials `json:"credentials,omitempty"`
	Socks5      *string            `json:"socks5,omitempty"`
}

// StoreService owns the persisted account list and panel config. Both
// files are whole-document overwrites on every mutation; last writer
// wins, which is fine for a single administrative user.
type StoreService interface {
	List() ([]model.AccountSummary, error)
	Get(id string) (model.Account, error)
	Create(name, remark string, creds model.Credentials, socks5 string) (model.Account, error)
	Update(id string, patch AccountPatch) (model.Account, error)
	Delete(id string) error

	Password() (string, error)
	SetPassword(newPassword string) error
}
