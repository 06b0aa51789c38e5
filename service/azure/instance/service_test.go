package azureinstance

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore/to"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/compute/armcompute/v5"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/network/armnetwork/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yuanzhangdck/azure-glass/model"
	"github.com/yuanzhangdck/azure-glass/service/azure/api/fakes"
	azureinfra "github.com/yuanzhangdck/azure-glass/service/azure/infra"
)

func newTestService(fake *fakes.Fake) *service {
	logger := slog.New(slog.DiscardHandler)
	svc := NewService(fake, azureinfra.NewService("sub-1", fake, logger), logger)
	svc.nowMs = func() int64 { return 1699999991234 }
	return svc
}

func TestCreate_ProvisionsFullChain(t *testing.T) {
	t.Parallel()

	fake := fakes.New()
	svc := newTestService(fake)

	accepted, err := svc.Create(context.Background(), model.CreateInstanceRequest{
		Name:     "web01",
		Location: "eastus",
		Size:     "Standard_B1s",
		Password: "abcdefghijkl",
	})
	require.NoError(t, err)
	assert.True(t, accepted.Accepted)
	assert.Equal(t, "create", accepted.Operation)

	assert.Contains(t, fake.PublicIPs, "AzurePanel-RG/web01-pip")
	assert.Contains(t, fake.Interfaces, "AzurePanel-RG/web01-nic")
	require.Contains(t, fake.VMs, "AzurePanel-RG/web01")

	vm := fake.VMs["AzurePanel-RG/web01"]
	assert.Equal(t, armcompute.VirtualMachineSizeTypes("Standard_B1s"), *vm.Properties.HardwareProfile.VMSize)
	assert.Equal(t, "azureuser", *vm.Properties.OSProfile.AdminUsername)
	assert.Equal(t, int32(64), *vm.Properties.StorageProfile.OSDisk.DiskSizeGB)
	assert.Equal(t, armcompute.DiskDeleteOptionTypesDelete, *vm.Properties.StorageProfile.OSDisk.DeleteOption)
	assert.Equal(t, armcompute.DeleteOptionsDelete, *vm.Properties.NetworkProfile.NetworkInterfaces[0].Properties.DeleteOption)
	assert.Equal(t, armcompute.VirtualMachinePriorityTypesRegular, *vm.Properties.Priority)
	assert.Nil(t, vm.Properties.BillingProfile)

	// The listing is the completion signal for the accepted create.
	instances, err := svc.List(context.Background())
	require.NoError(t, err)
	require.Len(t, instances, 1)
	assert.Equal(t, "web01", instances[0].Name)
	assert.Equal(t, "AzurePanel-RG", instances[0].ResourceGroup)
	assert.NotEqual(t, model.IPNone, instances[0].PublicIP)
	assert.Equal(t, model.IPNone, instances[0].PublicIPv6)
}

func TestCreate_MissingNameFails(t *testing.T) {
	t.Parallel()

	fake := fakes.New()
	svc := newTestService(fake)

	_, err := svc.Create(context.Background(), model.CreateInstanceRequest{Location: "eastus"})
	var validationErr *model.ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Empty(t, fake.VMs)
}

func TestCreate_SpotUsesDeallocateEviction(t *testing.T) {
	t.Parallel()

	fake := fakes.New()
	svc := newTestService(fake)

	_, err := svc.Create(context.Background(), model.CreateInstanceRequest{
		Name:     "spot01",
		Location: "eastus",
		Password: "abcdefghijkl",
		Spot:     true,
	})
	require.NoError(t, err)

	vm := fake.VMs["AzurePanel-RG/spot01"]
	assert.Equal(t, armcompute.VirtualMachinePriorityTypesSpot, *vm.Properties.Priority)
	assert.Equal(t, armcompute.VirtualMachineEvictionPolicyTypesDeallocate, *vm.Properties.EvictionPolicy)
	assert.Equal(t, -1.0, *vm.Properties.BillingProfile.MaxPrice)
}

func TestCreate_IPv6AddsSecondConfig(t *testing.T) {
	t.Parallel()

	fake := fakes.New()
	svc := newTestService(fake)

	_, err := svc.Create(context.Background(), model.CreateInstanceRequest{
		Name:     "dual01",
		Location: "eastus",
		Password: "abcdefghijkl",
		IPv6:     true,
	})
	require.NoError(t, err)

	assert.Contains(t, fake.PublicIPs, "AzurePanel-RG/dual01-pip-v6")
	nic := fake.Interfaces["AzurePanel-RG/dual01-nic"]
	require.Len(t, nic.Properties.IPConfigurations, 2)
	assert.Equal(t, armnetwork.IPVersionIPv6, *nic.Properties.IPConfigurations[1].Properties.PrivateIPAddressVersion)

	instances, err := svc.List(context.Background())
	require.NoError(t, err)
	require.Len(t, instances, 1)
	assert.NotEqual(t, model.IPNone, instances[0].PublicIPv6)
}

func TestList_NICFailureYieldsPlaceholders(t *testing.T) {
	t.Parallel()

	fake := fakes.New()
	svc := newTestService(fake)

	_, err := svc.Create(context.Background(), model.CreateInstanceRequest{
		Name: "web01", Location: "eastus", Password: "abcdefghijkl",
	})
	require.NoError(t, err)

	fake.Errs["GetInterface"] = errors.New("nic lookup failed")

	instances, err := svc.List(context.Background())
	require.NoError(t, err, "a per-instance lookup failure must not abort the listing")
	require.Len(t, instances, 1)
	assert.Equal(t, model.IPUnresolved, instances[0].PublicIP)
	assert.Equal(t, model.IPUnresolved, instances[0].PublicIPv6)
}

func TestLifecycleActions(t *testing.T) {
	t.Parallel()

	fake := fakes.New()
	svc := newTestService(fake)

	accepted, err := svc.Start(context.Background(), "AzurePanel-RG", "web01")
	require.NoError(t, err)
	assert.True(t, accepted.Accepted)

	_, err = svc.Stop(context.Background(), "AzurePanel-RG", "web01")
	require.NoError(t, err)
	_, err = svc.Delete(context.Background(), "AzurePanel-RG", "web01")
	require.NoError(t, err)

	assert.Equal(t, []string{"web01"}, fake.StartedVMs)
	assert.Equal(t, []string{"web01"}, fake.DeallocatedVMs, "stop must deallocate, not power off")
	assert.Equal(t, []string{"web01"}, fake.DeletedVMs)
}

func TestChangeIPv4_SwapsAddressAndCleansUp(t *testing.T) {
	t.Parallel()

	fake := fakes.New()
	svc := newTestService(fake)

	_, err := svc.Create(context.Background(), model.CreateInstanceRequest{
		Name: "web01", Location: "eastus", Password: "abcdefghijkl",
	})
	require.NoError(t, err)

	newIP, err := svc.ChangeIPv4(context.Background(), "AzurePanel-RG", "web01")
	require.NoError(t, err)
	assert.NotEmpty(t, newIP)

	assert.Contains(t, fake.PublicIPs, "AzurePanel-RG/web01-pip-1234")
	assert.Equal(t, []string{"web01-pip"}, fake.DeletedPublicIPs)

	nic := fake.Interfaces["AzurePanel-RG/web01-nic"]
	rebound := *nic.Properties.IPConfigurations[0].Properties.PublicIPAddress.ID
	assert.Contains(t, rebound, "web01-pip-1234")
}

func TestChangeIPv6_WithoutDualStackFails(t *testing.T) {
	t.Parallel()

	fake := fakes.New()
	svc := newTestService(fake)

	_, err := svc.Create(context.Background(), model.CreateInstanceRequest{
		Name: "web01", Location: "eastus", Password: "abcdefghijkl",
	})
	require.NoError(t, err)

	before := fake.Interfaces["AzurePanel-RG/web01-nic"]
	beforeID := *before.Properties.IPConfigurations[0].Properties.PublicIPAddress.ID

	_, err = svc.ChangeIPv6(context.Background(), "AzurePanel-RG", "web01")
	var cfgErr *model.ConfigNotFoundError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "IPv6", cfgErr.Family)

	// The IPv4 configuration is untouched.
	after := fake.Interfaces["AzurePanel-RG/web01-nic"]
	assert.Equal(t, beforeID, *after.Properties.IPConfigurations[0].Properties.PublicIPAddress.ID)
	assert.Empty(t, fake.DeletedPublicIPs)
}

func TestChangeIPv4_NoIPv4ConfigFails(t *testing.T) {
	t.Parallel()

	fake := fakes.New()
	svc := newTestService(fake)

	// A NIC with only an IPv6 configuration, which should not normally
	// occur.
	nic := armnetwork.Interface{
		Location: to.Ptr("eastus"),
		Properties: &armnetwork.InterfacePropertiesFormat{
			IPConfigurations: []*armnetwork.InterfaceIPConfiguration{{
				Name: to.Ptr("ipconfig-v6"),
				Properties: &armnetwork.InterfaceIPConfigurationPropertiesFormat{
					PrivateIPAddressVersion: to.Ptr(armnetwork.IPVersionIPv6),
				},
			}},
		},
	}
	stored, err := fake.UpdateInterface(context.Background(), "AzurePanel-RG", "odd01-nic", nic)
	require.NoError(t, err)

	require.NoError(t, fake.BeginCreateVM(context.Background(), "AzurePanel-RG", "odd01", armcompute.VirtualMachine{
		Location: to.Ptr("eastus"),
		Properties: &armcompute.VirtualMachineProperties{
			NetworkProfile: &armcompute.NetworkProfile{
				NetworkInterfaces: []*armcompute.NetworkInterfaceReference{{ID: stored.ID}},
			},
		},
	}))

	updatesBefore := fake.CallCount("UpdateInterface")
	_, err = svc.ChangeIPv4(context.Background(), "AzurePanel-RG", "odd01")
	var cfgErr *model.ConfigNotFoundError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "IPv4", cfgErr.Family)
	assert.Equal(t, updatesBefore, fake.CallCount("UpdateInterface"), "interface must be left unmodified")
}

func TestChangeIPv4_CleanupFailureIsSwallowed(t *testing.T) {
	t.Parallel()

	fake := fakes.New()
	svc := newTestService(fake)

	_, err := svc.Create(context.Background(), model.CreateInstanceRequest{
		Name: "web01", Location: "eastus", Password: "abcdefghijkl",
	})
	require.NoError(t, err)

	fake.Errs["BeginDeletePublicIP"] = errors.New("delete rejected")

	newIP, err := svc.ChangeIPv4(context.Background(), "AzurePanel-RG", "web01")
	require.NoError(t, err, "primary operation already succeeded; cleanup failure is logged only")
	assert.NotEmpty(t, newIP)
}

func TestListSKUs_FiltersAndRestrictions(t *testing.T) {
	t.Parallel()

	fake := fakes.New()
	fake.SKUs = []*armcompute.ResourceSKU{
		{
			Name:         to.Ptr("Standard_B1s"),
			Tier:         to.Ptr("Standard"),
			ResourceType: to.Ptr("virtualMachines"),
			Locations:    []*string{to.Ptr("eastus"), to.Ptr("westeurope")},
			Restrictions: []*armcompute.ResourceSKURestrictions{{
				Type:   to.Ptr(armcompute.ResourceSKURestrictionsTypeLocation),
				Values: []*string{to.Ptr("westeurope")},
			}},
		},
		{
			Name:         to.Ptr("Standard_D96s_v5"),
			ResourceType: to.Ptr("virtualMachines"),
		},
		{
			Name:         to.Ptr("Standard_B1s"),
			ResourceType: to.Ptr("disks"),
		},
	}
	svc := newTestService(fake)

	skus, err := svc.ListSKUs(context.Background(), "")
	require.NoError(t, err)
	require.Len(t, skus, 1)
	assert.Equal(t, "Standard_B1s", skus[0].Name)
	assert.Equal(t, []string{"westeurope"}, skus[0].RestrictedLocations)

	skus, err = svc.ListSKUs(context.Background(), "Standard_D96s_v5")
	require.NoError(t, err)
	require.Len(t, skus, 1)
	assert.Equal(t, "Standard_D96s_v5", skus[0].Name)
}
