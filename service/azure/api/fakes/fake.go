// Package fakes provides an in-memory AzureAPI implementation for
// unit tests. State maps are keyed "resourceGroup/name"; Errs injects
// a failure for a single method by name.
package fakes

import (
	"context"
	"fmt"
	"sync"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore/to"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/compute/armcompute/v5"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/network/armnetwork/v5"

	"github.com/yuanzhangdck/azure-glass/model"
)

type Fake struct {
	mu sync.Mutex

	ResourceGroups  map[string]model.ResourceGroup
	SecurityGroups  map[string]armnetwork.SecurityGroup
	VirtualNetworks map[string]armnetwork.VirtualNetwork
	PublicIPs       map[string]armnetwork.PublicIPAddress
	Interfaces      map[string]armnetwork.Interface
	VMs             map[string]armcompute.VirtualMachine
	SKUs            []*armcompute.ResourceSKU

	// Errs maps a method name ("EnsureVirtualNetwork", ...) to an
	// error returned by that method.
	Errs map[string]error

	// OnBeginDeleteResourceGroup, when set, runs before each group
	// deletion, outside the fake's lock. Lets tests pause a sweep
	// mid-flight.
	OnBeginDeleteResourceGroup func(name string) error

	Calls            []string
	DeletedGroups    []string
	DeletedPublicIPs []string
	StartedVMs       []string
	DeallocatedVMs   []string
	DeletedVMs       []string

	ipCounter int
}

func New() *Fake {
	return &Fake{
		ResourceGroups:  map[string]model.ResourceGroup{},
		SecurityGroups:  map[string]armnetwork.SecurityGroup{},
		VirtualNetworks: map[string]armnetwork.VirtualNetwork{},
		PublicIPs:       map[string]armnetwork.PublicIPAddress{},
		Interfaces:      map[string]armnetwork.Interface{},
		VMs:             map[string]armcompute.VirtualMachine{},
		Errs:            map[string]error{},
	}
}

func key(resourceGroup, name string) string { return resourceGroup + "/" + name }

func (f *Fake) record(method string) error {
	f.Calls = append(f.Calls, method)
	return f.Errs[method]
}

func (f *Fake) ResourceGroupExists(_ context.Context, name string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("ResourceGroupExists"); err != nil {
		return false, err
	}
	_, ok := f.ResourceGroups[name]
	return ok, nil
}

func (f *Fake) EnsureResourceGroup(_ context.Context, name, location string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("EnsureResourceGroup"); err != nil {
		return err
	}
	f.ResourceGroups[name] = model.ResourceGroup{Name: name, Location: location}
	return nil
}

func (f *Fake) ListResourceGroups(_ context.Context) ([]model.ResourceGroup, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("ListResourceGroups"); err != nil {
		return nil, err
	}
	var groups []model.ResourceGroup
	for _, rg := range f.ResourceGroups {
		groups = append(groups, rg)
	}
	return groups, nil
}

func (f *Fake) BeginDeleteResourceGroup(_ context.Context, name string) error {
	if f.OnBeginDeleteResourceGroup != nil {
		if err := f.OnBeginDeleteResourceGroup(name); err != nil {
			return err
		}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("BeginDeleteResourceGroup"); err != nil {
		return err
	}
	f.DeletedGroups = append(f.DeletedGroups, name)
	delete(f.ResourceGroups, name)
	return nil
}

func (f *Fake) EnsureSecurityGroup(_ context.Context, resourceGroup, name string, params armnetwork.SecurityGroup) (armnetwork.SecurityGroup, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("EnsureSecurityGroup"); err != nil {
		return armnetwork.SecurityGroup{}, err
	}
	params.Name = to.Ptr(name)
	params.ID = to.Ptr(fmt.Sprintf("/subscriptions/sub/resourceGroups/%s/providers/Microsoft.Network/networkSecurityGroups/%s", resourceGroup, name))
	f.SecurityGroups[key(resourceGroup, name)] = params
	return params, nil
}

func (f *Fake) EnsureVirtualNetwork(_ context.Context, resourceGroup, name string, params armnetwork.VirtualNetwork) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("EnsureVirtualNetwork"); err != nil {
		return err
	}
	params.Name = to.Ptr(name)
	f.VirtualNetworks[key(resourceGroup, name)] = params
	return nil
}

func (f *Fake) CreatePublicIP(_ context.Context, resourceGroup, name string, params armnetwork.PublicIPAddress) (armnetwork.PublicIPAddress, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("CreatePublicIP"); err != nil {
		return armnetwork.PublicIPAddress{}, err
	}
	f.ipCounter++
	params.Name = to.Ptr(name)
	params.ID = to.Ptr(fmt.Sprintf("/subscriptions/sub/resourceGroups/%s/providers/Microsoft.Network/publicIPAddresses/%s", resourceGroup, name))
	if params.Properties == nil {
		params.Properties = &armnetwork.PublicIPAddressPropertiesFormat{}
	}
	if params.Properties.PublicIPAddressVersion != nil && *params.Properties.PublicIPAddressVersion == armnetwork.IPVersionIPv6 {
		params.Properties.IPAddress = to.Ptr(fmt.Sprintf("2001:db8::%d", f.ipCounter))
	} else {
		params.Properties.IPAddress = to.Ptr(fmt.Sprintf("198.51.100.%d", f.ipCounter))
	}
	f.PublicIPs[key(resourceGroup, name)] = params
	return params, nil
}

func (f *Fake) BeginDeletePublicIP(_ context.Context, resourceGroup, name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("BeginDeletePublicIP"); err != nil {
		return err
	}
	f.DeletedPublicIPs = append(f.DeletedPublicIPs, name)
	delete(f.PublicIPs, key(resourceGroup, name))
	return nil
}

func (f *Fake) GetPublicIP(_ context.Context, resourceGroup, name string) (armnetwork.PublicIPAddress, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("GetPublicIP"); err != nil {
		return armnetwork.PublicIPAddress{}, err
	}
	pip, ok := f.PublicIPs[key(resourceGroup, name)]
	if !ok {
		return armnetwork.PublicIPAddress{}, fmt.Errorf("public IP %s not found", name)
	}
	return pip, nil
}

func (f *Fake) GetInterface(_ context.Context, resourceGroup, name string) (armnetwork.Interface, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("GetInterface"); err != nil {
		return armnetwork.Interface{}, err
	}
	nic, ok := f.Interfaces[key(resourceGroup, name)]
	if !ok {
		return armnetwork.Interface{}, fmt.Errorf("network interface %s not found", name)
	}
	return nic, nil
}

func (f *Fake) UpdateInterface(_ context.Context, resourceGroup, name string, nic armnetwork.Interface) (armnetwork.Interface, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("UpdateInterface"); err != nil {
		return armnetwork.Interface{}, err
	}
	nic.Name = to.Ptr(name)
	if nic.ID == nil {
		nic.ID = to.Ptr(fmt.Sprintf("/subscriptions/sub/resourceGroups/%s/providers/Microsoft.Network/networkInterfaces/%s", resourceGroup, name))
	}
	f.Interfaces[key(resourceGroup, name)] = nic
	return nic, nil
}

func (f *Fake) BeginCreateVM(_ context.Context, resourceGroup, name string, params armcompute.VirtualMachine) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("BeginCreateVM"); err != nil {
		return err
	}
	params.Name = to.Ptr(name)
	params.ID = to.Ptr(fmt.Sprintf("/subscriptions/sub/resourceGroups/%s/providers/Microsoft.Compute/virtualMachines/%s", resourceGroup, name))
	f.VMs[key(resourceGroup, name)] = params
	return nil
}

func (f *Fake) GetVM(_ context.Context, resourceGroup, name string) (armcompute.VirtualMachine, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("GetVM"); err != nil {
		return armcompute.VirtualMachine{}, err
	}
	vm, ok := f.VMs[key(resourceGroup, name)]
	if !ok {
		return armcompute.VirtualMachine{}, fmt.Errorf("VM %s not found", name)
	}
	return vm, nil
}

func (f *Fake) ListAllVMs(_ context.Context) ([]*armcompute.VirtualMachine, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("ListAllVMs"); err != nil {
		return nil, err
	}
	var vms []*armcompute.VirtualMachine
	for k := range f.VMs {
		vm := f.VMs[k]
		vms = append(vms, &vm)
	}
	return vms, nil
}

func (f *Fake) BeginStartVM(_ context.Context, _, name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("BeginStartVM"); err != nil {
		return err
	}
	f.StartedVMs = append(f.StartedVMs, name)
	return nil
}

func (f *Fake) BeginDeallocateVM(_ context.Context, _, name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("BeginDeallocateVM"); err != nil {
		return err
	}
	f.DeallocatedVMs = append(f.DeallocatedVMs, name)
	return nil
}

func (f *Fake) BeginDeleteVM(_ context.Context, resourceGroup, name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("BeginDeleteVM"); err != nil {
		return err
	}
	f.DeletedVMs = append(f.DeletedVMs, name)
	delete(f.VMs, key(resourceGroup, name))
	return nil
}

func (f *Fake) ListSKUs(_ context.Context) ([]*armcompute.ResourceSKU, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("ListSKUs"); err != nil {
		return nil, err
	}
	return f.SKUs, nil
}

// CallCount returns how many times a method was invoked.
func (f *Fake) CallCount(method string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.Calls {
		if c == method {
			n++
		}
	}
	return n
}
