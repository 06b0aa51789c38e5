package azureapi

import (
	"context"

	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/compute/armcompute/v5"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/network/armnetwork/v5"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/resources/armresources"

	"github.com/yuanzhangdck/azure-glass/model"
)

type service struct {
	subscriptionID string

	groupsClient *armresources.ResourceGroupsClient
	sgClient     *armnetwork.SecurityGroupsClient
	vnetClient   *armnetwork.VirtualNetworksClient
	pipClient    *armnetwork.PublicIPAddressesClient
	nicClient    *armnetwork.InterfacesClient
	vmClient     *armcompute.VirtualMachinesClient
	skuClient    *armcompute.ResourceSKUsClient
}

// AzureAPI is the slice of the Azure resource manager surface the
// panel needs. Ensure/Create methods poll the operation to completion;
// Begin methods return as soon as Azure accepts the request and the
// instance list is the only completion signal.
type AzureAPI interface {
	// Resource groups.
	ResourceGroupExists(ctx context.Context, name string) (bool, error)
	EnsureResourceGroup(ctx context.Context, name, location string) error
	ListResourceGroups(ctx context.Context) ([]model.ResourceGroup, error)
	BeginDeleteResourceGroup(ctx context.Context, name string) error

	// Networking. EnsureSecurityGroup and EnsureVirtualNetwork are
	// declarative upserts: re-applying the same parameters converges.
	EnsureSecurityGroup(ctx context.Context, resourceGroup, name string, params armnetwork.SecurityGroup) (armnetwork.SecurityGroup, error)
	EnsureVirtualNetwork(ctx context.Context, resourceGroup, name string, params armnetwork.VirtualNetwork) error
	CreatePublicIP(ctx context.Context, resourceGroup, name string, params armnetwork.PublicIPAddress) (armnetwork.PublicIPAddress, error)
	BeginDeletePublicIP(ctx context.Context, resourceGroup, name string) error
	GetPublicIP(ctx context.Context, resourceGroup, name string) (armnetwork.PublicIPAddress, error)
	GetInterface(ctx context.Context, resourceGroup, name string) (armnetwork.Interface, error)
	UpdateInterface(ctx context.Context, resourceGroup, name string, nic armnetwork.Interface) (armnetwork.Interface, error)

	// Compute.
	BeginCreateVM(ctx context.Context, resourceGroup, name string, params armcompute.VirtualMachine) error
	GetVM(ctx context.Context, resourceGroup, name string) (armcompute.VirtualMachine, error)
	ListAllVMs(ctx context.Context) ([]*armcompute.VirtualMachine, error)
	BeginStartVM(ctx context.Context, resourceGroup, name string) error
	BeginDeallocateVM(ctx context.Context, resourceGroup, name string) error
	BeginDeleteVM(ctx context.Context, resourceGroup, name string) error
	ListSKUs(ctx context.Context) ([]*armcompute.ResourceSKU, error)
}
