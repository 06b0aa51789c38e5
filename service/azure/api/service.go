package azureapi

import (
	"context"
	"fmt"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/arm"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/to"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/compute/armcompute/v5"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/network/armnetwork/v5"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/resources/armresources"

	"github.com/yuanzhangdck/azure-glass/model"
)

// NewService wires one client per resource domain, all sharing the
// given credential and client options (which carry the per-account
// proxy transport).
func NewService(subscriptionID string, credential azcore.TokenCredential, options *arm.ClientOptions) (*service, error) {
	groupsClient, err := armresources.NewResourceGroupsClient(subscriptionID, credential, options)
	if err != nil {
		return nil, fmt.Errorf("failed to create resource groups client: %w", err)
	}

	sgClient, err := armnetwork.NewSecurityGroupsClient(subscriptionID, credential, options)
	if err != nil {
		return nil, fmt.Errorf("failed to create security groups client: %w", err)
	}

	vnetClient, err := armnetwork.NewVirtualNetworksClient(subscriptionID, credential, options)
	if err != nil {
		return nil, fmt.Errorf("failed to create virtual networks client: %w", err)
	}

	pipClient, err := armnetwork.NewPublicIPAddressesClient(subscriptionID, credential, options)
	if err != nil {
		return nil, fmt.Errorf("failed to create public IP client: %w", err)
	}

	nicClient, err := armnetwork.NewInterfacesClient(subscriptionID, credential, options)
	if err != nil {
		return nil, fmt.Errorf("failed to create interfaces client: %w", err)
	}

	vmClient, err := armcompute.NewVirtualMachinesClient(subscriptionID, credential, options)
	if err != nil {
		return nil, fmt.Errorf("failed to create VM client: %w", err)
	}

	skuClient, err := armcompute.NewResourceSKUsClient(subscriptionID, credential, options)
	if err != nil {
		return nil, fmt.Errorf("failed to create SKU client: %w", err)
	}

	return &service{
		subscriptionID: subscriptionID,
		groupsClient:   groupsClient,
		sgClient:       sgClient,
		vnetClient:     vnetClient,
		pipClient:      pipClient,
		nicClient:      nicClient,
		vmClient:       vmClient,
		skuClient:      skuClient,
	}, nil
}

// ResourceGroupExists implements azureapi.AzureAPI.
func (s *service) ResourceGroupExists(ctx context.Context, name string) (bool, error) {
	resp, err := s.groupsClient.CheckExistence(ctx, name, nil)
	if err != nil {
		return false, fmt.Errorf("failed to check resource group %s: %w", name, err)
	}
	return resp.Success, nil
}

// EnsureResourceGroup implements azureapi.AzureAPI.
func (s *service) EnsureResourceGroup(ctx context.Context, name, location string) error {
	_, err := s.groupsClient.CreateOrUpdate(ctx, name, armresources.ResourceGroup{
		Location: to.Ptr(location),
	}, nil)
	if err != nil {
		return fmt.Errorf("failed to create resource group %s: %w", name, err)
	}
	return nil
}

// ListResourceGroups implements azureapi.AzureAPI.
func (s *service) ListResourceGroups(ctx context.Context) ([]model.ResourceGroup, error) {
	var groups []model.ResourceGroup

	pager := s.groupsClient.NewListPager(nil)
	for pager.More() {
		page, err := pager.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list resource groups: %w", err)
		}
		for _, rg := range page.Value {
			group := model.ResourceGroup{}
			if rg.Name != nil {
				group.Name = *rg.Name
			}
			if rg.Location != nil {
				group.Location = *rg.Location
			}
			if len(rg.Tags) > 0 {
				group.Tags = make(map[string]string, len(rg.Tags))
				for k, v := range rg.Tags {
					if v != nil {
						group.Tags[k] = *v
					}
				}
			}
			groups = append(groups, group)
		}
	}
	return groups, nil
}

// BeginDeleteResourceGroup implements azureapi.AzureAPI. The deletion
// continues server-side after this returns.
func (s *service) BeginDeleteResourceGroup(ctx context.Context, name string) error {
	_, err := s.groupsClient.BeginDelete(ctx, name, nil)
	if err != nil {
		return fmt.Errorf("failed to delete resource group %s: %w", name, err)
	}
	return nil
}

// EnsureSecurityGroup implements azureapi.AzureAPI.
func (s *service) EnsureSecurityGroup(ctx context.Context, resourceGroup, name string, params armnetwork.SecurityGroup) (armnetwork.SecurityGroup, error) {
	poller, err := s.sgClient.BeginCreateOrUpdate(ctx, resourceGroup, name, params, nil)
	if err != nil {
		return armnetwork.SecurityGroup{}, fmt.Errorf("failed to upsert security group %s: %w", name, err)
	}
	resp, err := poller.PollUntilDone(ctx, nil)
	if err != nil {
		return armnetwork.SecurityGroup{}, fmt.Errorf("failed to upsert security group %s: %w", name, err)
	}
	return resp.SecurityGroup, nil
}

// EnsureVirtualNetwork implements azureapi.AzureAPI.
func (s *service) EnsureVirtualNetwork(ctx context.Context, resourceGroup, name string, params armnetwork.VirtualNetwork) error {
	poller, err := s.vnetClient.BeginCreateOrUpdate(ctx, resourceGroup, name, params, nil)
	if err != nil {
		return fmt.Errorf("failed to upsert virtual network %s: %w", name, err)
	}
	if _, err := poller.PollUntilDone(ctx, nil); err != nil {
		return fmt.Errorf("failed to upsert virtual network %s: %w", name, err)
	}
	return nil
}

// CreatePublicIP implements azureapi.AzureAPI. The address allocation
// is awaited so the caller gets the concrete address back.
func (s *service) CreatePublicIP(ctx context.Context, resourceGroup, name string, params armnetwork.PublicIPAddress) (armnetwork.PublicIPAddress, error) {
	poller, err := s.pipClient.BeginCreateOrUpdate(ctx, resourceGroup, name, params, nil)
	if err != nil {
		return armnetwork.PublicIPAddress{}, fmt.Errorf("failed to create public IP %s: %w", name, err)
	}
	resp, err := poller.PollUntilDone(ctx, nil)
	if err != nil {
		return armnetwork.PublicIPAddress{}, fmt.Errorf("failed to create public IP %s: %w", name, err)
	}
	return resp.PublicIPAddress, nil
}

// BeginDeletePublicIP implements azureapi.AzureAPI.
func (s *service) BeginDeletePublicIP(ctx context.Context, resourceGroup, name string) error {
	_, err := s.pipClient.BeginDelete(ctx, resourceGroup, name, nil)
	if err != nil {
		return fmt.Errorf("failed to delete public IP %s: %w", name, err)
	}
	return nil
}

// GetPublicIP implements azureapi.AzureAPI.
func (s *service) GetPublicIP(ctx context.Context, resourceGroup, name string) (armnetwork.PublicIPAddress, error) {
	resp, err := s.pipClient.Get(ctx, resourceGroup, name, nil)
	if err != nil {
		return armnetwork.PublicIPAddress{}, fmt.Errorf("failed to get public IP %s: %w", name, err)
	}
	return resp.PublicIPAddress, nil
}

// GetInterface implements azureapi.AzureAPI.
func (s *service) GetInterface(ctx context.Context, resourceGroup, name string) (armnetwork.Interface, error) {
	resp, err := s.nicClient.Get(ctx, resourceGroup, name, nil)
	if err != nil {
		return armnetwork.Interface{}, fmt.Errorf("failed to get network interface %s: %w", name, err)
	}
	return resp.Interface, nil
}

// UpdateInterface implements azureapi.AzureAPI. Interface updates are
// awaited: IP rotation has to observe the rebind before it can clean
// up the old address.
func (s *service) UpdateInterface(ctx context.Context, resourceGroup, name string, nic armnetwork.Interface) (armnetwork.Interface, error) {
	poller, err := s.nicClient.BeginCreateOrUpdate(ctx, resourceGroup, name, nic, nil)
	if err != nil {
		return armnetwork.Interface{}, fmt.Errorf("failed to update network interface %s: %w", name, err)
	}
	resp, err := poller.PollUntilDone(ctx, nil)
	if err != nil {
		return armnetwork.Interface{}, fmt.Errorf("failed to update network interface %s: %w", name, err)
	}
	return resp.Interface, nil
}

// BeginCreateVM implements azureapi.AzureAPI. Returns once Azure has
// accepted the creation; provisioning continues server-side.
func (s *service) BeginCreateVM(ctx context.Context, resourceGroup, name string, params armcompute.VirtualMachine) error {
	_, err := s.vmClient.BeginCreateOrUpdate(ctx, resourceGroup, name, params, nil)
	if err != nil {
		return fmt.Errorf("failed to create VM %s: %w", name, err)
	}
	return nil
}

// GetVM implements azureapi.AzureAPI.
func (s *service) GetVM(ctx context.Context, resourceGroup, name string) (armcompute.VirtualMachine, error) {
	resp, err := s.vmClient.Get(ctx, resourceGroup, name, nil)
	if err != nil {
		return armcompute.VirtualMachine{}, fmt.Errorf("failed to get VM %s: %w", name, err)
	}
	return resp.VirtualMachine, nil
}

// ListAllVMs implements azureapi.AzureAPI, enumerating every VM in the
// subscription across all resource groups.
func (s *service) ListAllVMs(ctx context.Context) ([]*armcompute.VirtualMachine, error) {
	var vms []*armcompute.VirtualMachine

	pager := s.vmClient.NewListAllPager(nil)
	for pager.More() {
		page, err := pager.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list VMs: %w", err)
		}
		vms = append(vms, page.Value...)
	}
	return vms, nil
}

// BeginStartVM implements azureapi.AzureAPI.
func (s *service) BeginStartVM(ctx context.Context, resourceGroup, name string) error {
	_, err := s.vmClient.BeginStart(ctx, resourceGroup, name, nil)
	if err != nil {
		return fmt.Errorf("failed to start VM %s: %w", name, err)
	}
	return nil
}

// BeginDeallocateVM implements azureapi.AzureAPI. Deallocate, not
// power-off: a powered-off VM still bills for compute.
func (s *service) BeginDeallocateVM(ctx context.Context, resourceGroup, name string) error {
	_, err := s.vmClient.BeginDeallocate(ctx, resourceGroup, name, nil)
	if err != nil {
		return fmt.Errorf("failed to deallocate VM %s: %w", name, err)
	}
	return nil
}

// BeginDeleteVM implements azureapi.AzureAPI.
func (s *service) BeginDeleteVM(ctx context.Context, resourceGroup, name string) error {
	_, err := s.vmClient.BeginDelete(ctx, resourceGroup, name, nil)
	if err != nil {
		return fmt.Errorf("failed to delete VM %s: %w", name, err)
	}
	return nil
}

// ListSKUs implements azureapi.AzureAPI.
func (s *service) ListSKUs(ctx context.Context) ([]*armcompute.ResourceSKU, error) {
	var skus []*armcompute.ResourceSKU

	pager := s.skuClient.NewListPager(nil)
	for pager.More() {
		page, err := pager.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list SKUs: %w", err)
		}
		skus = append(skus, page.Value...)
	}
	return skus, nil
}
